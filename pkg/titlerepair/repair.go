// Package titlerepair fixes Arabic legal titles that upstream sites emit with
// reversed character order, garbled keywords or scrambled field order.
//
// Repair is an ordered pipeline of total functions. Identical input always
// yields identical output.
package titlerepair

// Mode selects which stages run. Rename mode adds Unicode normalization and the
// scrambled-order rewrites used by the offline renamer.
type Mode int

const (
	ModeCrawl Mode = iota
	ModeRename
)

func (m Mode) String() string {
	if m == ModeRename {
		return "rename"
	}
	return "crawl"
}

// Stage is one step of the repair pipeline.
type Stage interface {
	Name() string
	Description() string
	Applicable(mode Mode) bool
	Apply(title, hint string) string
}

// Result carries the repaired title and the stages that changed it.
type Result struct {
	Original      string   `json:"original"`
	Title         string   `json:"title"`
	StagesApplied []string `json:"stages_applied"`
}

// Repairer runs the stages applicable to its mode in fixed order.
type Repairer struct {
	mode   Mode
	stages []Stage
}

// NewRepairer creates a repairer with the default stage order.
func NewRepairer(mode Mode) *Repairer {
	return &Repairer{
		mode: mode,
		stages: []Stage{
			&bidiStage{},
			&unicodeStage{},
			&mirroringStage{},
			&legalTermsStage{},
			&specificOrderStage{},
			&canonicalStage{},
		},
	}
}

// Mode returns the mode the repairer was built for.
func (r *Repairer) Mode() Mode {
	return r.mode
}

// Repair returns the repaired form of raw.
func (r *Repairer) Repair(raw string) string {
	return r.RepairWithTrace(raw).Title
}

// RepairWithTrace repairs raw and records which stages changed the text.
// raw doubles as the hint for the canonicalization stage.
func (r *Repairer) RepairWithTrace(raw string) Result {
	result := Result{Original: raw, StagesApplied: []string{}}
	title := raw
	for _, stage := range r.stages {
		if !stage.Applicable(r.mode) {
			continue
		}
		next := stage.Apply(title, raw)
		if next != title {
			result.StagesApplied = append(result.StagesApplied, stage.Name())
			title = next
		}
	}
	result.Title = title
	return result
}

type bidiStage struct{}

func (s *bidiStage) Name() string             { return "strip_bidi_controls" }
func (s *bidiStage) Description() string      { return "Removes directional formatting characters" }
func (s *bidiStage) Applicable(Mode) bool     { return true }
func (s *bidiStage) Apply(t, _ string) string { return StripBidiControls(t) }

type unicodeStage struct{}

func (s *unicodeStage) Name() string { return "normalize_unicode_arabic" }
func (s *unicodeStage) Description() string {
	return "NFKC normalization, combining mark and tatweel removal"
}
func (s *unicodeStage) Applicable(m Mode) bool   { return m == ModeRename }
func (s *unicodeStage) Apply(t, _ string) string { return NormalizeUnicodeArabic(t) }

type mirroringStage struct{}

func (s *mirroringStage) Name() string { return "fix_arabic_mirroring" }
func (s *mirroringStage) Description() string {
	return "Reverses mirrored tokens, then the whole title, when that reveals legal vocabulary"
}
func (s *mirroringStage) Applicable(Mode) bool     { return true }
func (s *mirroringStage) Apply(t, _ string) string { return FixArabicMirroring(t) }

type legalTermsStage struct{}

func (s *legalTermsStage) Name() string { return "normalize_legal_terms" }
func (s *legalTermsStage) Description() string {
	return "Rewrites mirrored numbers, years and reversed legal keywords"
}
func (s *legalTermsStage) Applicable(Mode) bool     { return true }
func (s *legalTermsStage) Apply(t, _ string) string { return NormalizeLegalTerms(t) }

type specificOrderStage struct{}

func (s *specificOrderStage) Name() string { return "normalize_specific_order" }
func (s *specificOrderStage) Description() string {
	return "Rewrites known scrambled decision field orders"
}
func (s *specificOrderStage) Applicable(m Mode) bool   { return m == ModeRename }
func (s *specificOrderStage) Apply(t, _ string) string { return NormalizeSpecificOrderCases(t) }

type canonicalStage struct{}

func (s *canonicalStage) Name() string { return "canonicalize_legal_title" }
func (s *canonicalStage) Description() string {
	return "Resynthesizes decision-by-law titles in canonical order"
}
func (s *canonicalStage) Applicable(Mode) bool        { return true }
func (s *canonicalStage) Apply(t, hint string) string { return CanonicalizeLegalTitle(t, hint) }
