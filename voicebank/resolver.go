package voicebank

import "strings"

// Source is what a Resolver needs from a voicebank.
type Source interface {
	LookupConfig(alias string) (LyricConfig, bool)
	PitchSuffix(pitch string) string
	PhoneticGroup(token string) []string
}

// Resolver finds the sample that should be sung for a lyric given the
// lyric before it and the pitch it is sung at.
type Resolver struct {
	src Source
}

func NewResolver(src Source) *Resolver {
	return &Resolver{src: src}
}

// Resolve returns the config for lyric. Exact spellings of lyric are tried
// before any phonetically equivalent spelling. Among equivalent spellings
// the smallest config by Compare wins.
func (r *Resolver) Resolve(prevLyric, lyric, pitch string) (LyricConfig, bool) {
	prefix := string(r.Vowel(prevLyric)) + " "
	suffix := r.src.PitchSuffix(pitch)

	for _, combo := range combinations(prefix, lyric, suffix) {
		if config, ok := r.src.LookupConfig(combo); ok {
			return config, true
		}
	}

	var best LyricConfig
	found := false
	for _, converted := range r.src.PhoneticGroup(lyric) {
		if converted == lyric {
			continue
		}
		for _, combo := range combinations(prefix, converted, suffix) {
			config, ok := r.src.LookupConfig(combo)
			if !ok {
				continue
			}
			if !found || config.Compare(best) < 0 {
				best = config
				found = true
			}
		}
	}
	return best, found
}

// Vowel is the last letter of the first all-ASCII-letter spelling of
// prevLyric, lowercased, or '-' when there is none.
func (r *Resolver) Vowel(prevLyric string) byte {
	for _, converted := range r.src.PhoneticGroup(prevLyric) {
		if converted != "" && isASCIILetters(converted) {
			return strings.ToLower(converted)[len(converted)-1]
		}
	}
	return '-'
}

func combinations(prefix, lyric, suffix string) [4]string {
	return [4]string{lyric, lyric + suffix, prefix + lyric + suffix, prefix + lyric}
}

func isASCIILetters(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < 'a' || c > 'z') && (c < 'A' || c > 'Z') {
			return false
		}
	}
	return true
}
