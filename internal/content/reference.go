// Package content holds the read-only first-aid reference material served
// by the API: the manual, disaster preparedness tips, video guides, and
// emergency numbers.
package content

import "strings"

type ManualStep struct {
	Heading string `json:"heading"`
	Text    string `json:"text"`
}

type ManualSection struct {
	Title   string       `json:"title"`
	Content []ManualStep `json:"content"`
}

type CalamityTips struct {
	Type        string   `json:"type"`
	Tips        []string `json:"tips"`
	Description string   `json:"description"`
}

type VideoGuide struct {
	Title       string `json:"title"`
	Duration    string `json:"duration"`
	Category    string `json:"category"`
	Description string `json:"description"`
}

type EmergencyNumber struct {
	Country  string `json:"country"`
	Number   string `json:"number"`
	Services string `json:"services"`
}

var manualSections = []ManualSection{
	{
		Title: "Basic Life Support",
		Content: []ManualStep{
			{Heading: "Check Response", Text: "Gently shake and ask loudly if they're okay"},
			{Heading: "Open Airway", Text: "Tilt head back slightly to open the airway"},
			{Heading: "Check Breathing", Text: "Look, listen and feel for normal breathing"},
			{Heading: "Start CPR", Text: "If not breathing normally, begin chest compressions"},
		},
	},
	{
		Title: "Bleeding Control",
		Content: []ManualStep{
			{Heading: "Apply Pressure", Text: "Use clean cloth or sterile bandage"},
			{Heading: "Elevate", Text: "Raise injured area above heart if possible"},
			{Heading: "Clean Wound", Text: "Clean with antiseptic when bleeding slows"},
			{Heading: "Bandage", Text: "Apply appropriate dressing and bandage"},
		},
	},
	{
		Title: "Fractures & Sprains",
		Content: []ManualStep{
			{Heading: "Immobilize", Text: "Prevent movement of injured area"},
			{Heading: "Apply Ice", Text: "Reduce swelling with cold compress"},
			{Heading: "Compress", Text: "Use elastic bandage for support"},
			{Heading: "Elevate", Text: "Raise injured limb when possible"},
		},
	},
}

var calamityTips = []CalamityTips{
	{
		Type: "Earthquake",
		Tips: []string{
			"Drop, Cover, and Hold On",
			"Stay away from windows and exterior walls",
			"If indoors, stay there until shaking stops",
			"If outdoors, move to a clear area away from buildings",
			"Keep an emergency kit ready",
			"Know the safe spots in each room",
			"Have a family communication plan",
			"Keep a flashlight and sturdy shoes by your bed",
		},
		Description: "Earthquakes strike without warning. Being prepared and knowing how to react can save lives.",
	},
	{
		Type: "Flood",
		Tips: []string{
			"Move to higher ground immediately",
			"Never drive through flooded roads",
			"Keep important documents waterproof",
			"Listen to emergency broadcasts",
			"Prepare an evacuation plan",
			"Store drinking water in clean containers",
			"Have battery-powered emergency lighting",
			"Keep emergency contact numbers handy",
		},
		Description: "Floods can develop slowly or suddenly. Stay informed and be ready to evacuate if necessary.",
	},
	{
		Type: "Fire",
		Tips: []string{
			"Install smoke detectors and check regularly",
			"Create and practice an escape plan",
			"Stay low to avoid smoke inhalation",
			"Never use elevators during a fire",
			"Keep fire extinguishers accessible",
			"Know multiple escape routes",
			"Have a designated meeting place outside",
			"Test smoke alarms monthly",
		},
		Description: "In case of fire, every second counts. Having a plan and practicing it can make all the difference.",
	},
	{
		Type: "Hurricane",
		Tips: []string{
			"Board up windows and secure outdoor items",
			"Stock up on emergency supplies",
			"Follow evacuation orders",
			"Stay informed about storm progress",
			"Have a battery-powered radio",
			"Fill vehicles with fuel",
			"Prepare a hurricane emergency kit",
			"Know your evacuation zone",
		},
		Description: "Hurricanes can cause catastrophic damage. Early preparation is key to survival.",
	},
}

var videoGuides = []VideoGuide{
	{
		Title:       "CPR Basics",
		Duration:    "5:30",
		Category:    "Critical Care",
		Description: "Learn the proper technique for performing CPR on adults",
	},
	{
		Title:       "Heimlich Maneuver",
		Duration:    "4:15",
		Category:    "Choking",
		Description: "Step-by-step guide to helping choking victims",
	},
	{
		Title:       "Wound Dressing",
		Duration:    "6:45",
		Category:    "First Aid",
		Description: "Proper techniques for cleaning and dressing wounds",
	},
}

var emergencyNumbers = []EmergencyNumber{
	{Country: "India", Number: "112", Services: "All Emergency Services"},
	{Country: "India", Number: "108", Services: "Ambulance Services"},
	{Country: "India", Number: "101", Services: "Fire Department"},
	{Country: "India", Number: "100", Services: "Police"},
	{Country: "United States", Number: "911", Services: "Police, Fire, Medical"},
	{Country: "United Kingdom", Number: "999", Services: "Police, Fire, Ambulance"},
}

var emergencyCallSteps = []string{
	"Stay calm and speak clearly",
	"State your location first",
	"Describe the emergency situation",
	"Answer all dispatcher questions",
	"Follow dispatcher instructions",
	"Don't hang up until instructed",
}

// ManualSections returns the first-aid manual, optionally filtered by a
// case-insensitive search over titles, headings, and step text.
func ManualSections(search string) []ManualSection {
	if search == "" {
		return manualSections
	}

	q := strings.ToLower(search)
	out := make([]ManualSection, 0, len(manualSections))
	for _, section := range manualSections {
		if strings.Contains(strings.ToLower(section.Title), q) {
			out = append(out, section)
			continue
		}
		for _, step := range section.Content {
			if strings.Contains(strings.ToLower(step.Heading), q) ||
				strings.Contains(strings.ToLower(step.Text), q) {
				out = append(out, section)
				break
			}
		}
	}
	return out
}

// LifeTips returns disaster preparedness tips, optionally filtered by a
// case-insensitive search over the disaster type and tip text.
func LifeTips(search string) []CalamityTips {
	if search == "" {
		return calamityTips
	}

	q := strings.ToLower(search)
	out := make([]CalamityTips, 0, len(calamityTips))
	for _, calamity := range calamityTips {
		if strings.Contains(strings.ToLower(calamity.Type), q) {
			out = append(out, calamity)
			continue
		}
		for _, tip := range calamity.Tips {
			if strings.Contains(strings.ToLower(tip), q) {
				out = append(out, calamity)
				break
			}
		}
	}
	return out
}

func VideoGuides() []VideoGuide {
	return videoGuides
}

func EmergencyNumbers() []EmergencyNumber {
	return emergencyNumbers
}

func EmergencyCallSteps() []string {
	return emergencyCallSteps
}
