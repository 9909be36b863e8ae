package domain

// LanguageSupport holds the per-language capability sets scraped from a
// store page. Each set lists language names as the storefront reports them.
type LanguageSupport struct {
	Interface []string `json:"interface,omitempty"`
	Subtitles []string `json:"subtitles,omitempty"`
	FullAudio []string `json:"full_audio,omitempty"`
}

// IsEmpty reports whether all three sets are empty. An empty struct is
// "absent" for hierarchical fallback.
func (l LanguageSupport) IsEmpty() bool {
	return len(l.Interface) == 0 && len(l.Subtitles) == 0 && len(l.FullAudio) == 0
}

// Clone returns a deep copy.
func (l LanguageSupport) Clone() LanguageSupport {
	return LanguageSupport{
		Interface: cloneStrings(l.Interface),
		Subtitles: cloneStrings(l.Subtitles),
		FullAudio: cloneStrings(l.FullAudio),
	}
}

// VRSupport holds the VR capability sets scraped from a store page.
type VRSupport struct {
	Headsets []string `json:"headsets,omitempty"`
	Input    []string `json:"input,omitempty"`
	PlayArea []string `json:"play_area,omitempty"`
}

// IsEmpty reports whether all three sets are empty. Fallback to the
// parent entry triggers exactly when the whole struct is empty, never
// per-set.
func (v VRSupport) IsEmpty() bool {
	return len(v.Headsets) == 0 && len(v.Input) == 0 && len(v.PlayArea) == 0
}

// Clone returns a deep copy.
func (v VRSupport) Clone() VRSupport {
	return VRSupport{
		Headsets: cloneStrings(v.Headsets),
		Input:    cloneStrings(v.Input),
		PlayArea: cloneStrings(v.PlayArea),
	}
}
