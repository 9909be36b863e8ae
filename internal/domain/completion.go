package domain

// CompletionTimes holds how-long-to-beat style play times in minutes.
// 0 means unknown.
type CompletionTimes struct {
	Main          int64 `json:"main"`
	Extras        int64 `json:"extras"`
	Completionist int64 `json:"completionist"`
}

// IsZero reports whether all three times are unknown. A zero triple is
// "absent" for hierarchical fallback.
func (c CompletionTimes) IsZero() bool {
	return c.Main == 0 && c.Extras == 0 && c.Completionist == 0
}

// CompletionRecord is one row of the completion-time feed. The feed marks
// statistically estimated values with per-field imputed flags so callers
// can choose whether to accept them.
type CompletionRecord struct {
	ID                   int64 `json:"id"`
	Main                 int64 `json:"main,omitempty"`
	Extras               int64 `json:"extras,omitempty"`
	Completionist        int64 `json:"completionist,omitempty"`
	MainImputed          bool  `json:"main_imputed,omitempty"`
	ExtrasImputed        bool  `json:"extras_imputed,omitempty"`
	CompletionistImputed bool  `json:"completionist_imputed,omitempty"`
}

// Times converts the record to a completion triple, zeroing any imputed
// field unless includeImputed is set.
func (r CompletionRecord) Times(includeImputed bool) CompletionTimes {
	t := CompletionTimes{
		Main:          r.Main,
		Extras:        r.Extras,
		Completionist: r.Completionist,
	}
	if !includeImputed {
		if r.MainImputed {
			t.Main = 0
		}
		if r.ExtrasImputed {
			t.Extras = 0
		}
		if r.CompletionistImputed {
			t.Completionist = 0
		}
	}
	return t
}
