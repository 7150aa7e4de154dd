package content

import "testing"

func TestManualSectionsSearch(t *testing.T) {
	all := ManualSections("")
	if len(all) != 3 {
		t.Fatalf("expected 3 manual sections, got %d", len(all))
	}

	byTitle := ManualSections("bleeding")
	if len(byTitle) != 1 || byTitle[0].Title != "Bleeding Control" {
		t.Fatalf("expected title match for 'bleeding', got %+v", byTitle)
	}

	// "compressions" only appears in a step body, not a title.
	byStep := ManualSections("compressions")
	if len(byStep) != 1 || byStep[0].Title != "Basic Life Support" {
		t.Fatalf("expected step-text match, got %+v", byStep)
	}

	if got := ManualSections("no-such-topic"); len(got) != 0 {
		t.Fatalf("expected no match, got %d sections", len(got))
	}
}

func TestLifeTipsSearch(t *testing.T) {
	all := LifeTips("")
	if len(all) != 4 {
		t.Fatalf("expected 4 calamity entries, got %d", len(all))
	}

	flood := LifeTips("FLOOD")
	if len(flood) != 1 || flood[0].Type != "Flood" {
		t.Fatalf("expected case-insensitive type match, got %+v", flood)
	}

	// "smoke" appears only in fire tips.
	smoke := LifeTips("smoke")
	if len(smoke) != 1 || smoke[0].Type != "Fire" {
		t.Fatalf("expected tip-text match, got %+v", smoke)
	}
}

func TestEmergencyNumbersCoverRegions(t *testing.T) {
	numbers := EmergencyNumbers()

	byCountry := make(map[string]int)
	for _, n := range numbers {
		byCountry[n.Country]++
	}

	if byCountry["India"] != 4 {
		t.Fatalf("expected 4 Indian numbers, got %d", byCountry["India"])
	}
	if byCountry["United States"] != 1 || byCountry["United Kingdom"] != 1 {
		t.Fatalf("expected US and UK entries, got %+v", byCountry)
	}

	if len(EmergencyCallSteps()) == 0 {
		t.Fatalf("expected call guidance steps")
	}
}
