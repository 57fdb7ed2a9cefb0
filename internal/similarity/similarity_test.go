package similarity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"  Le'Veon   Bell ", "leveon bell"},
		{"D/ST", "dst"},
		{"Odell Beckham Jr.", "odell beckham jr"},
		{"A.J. Brown", "aj brown"},
		{"", ""},
		{"!!!", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.in))
		})
	}
}

func TestCanonical(t *testing.T) {
	assert.Equal(t, "patrick mahomes", Canonical("Pat Mahomes II"))
	assert.Equal(t, "robert smith", Canonical("Bob Smith Jr."))
	assert.Equal(t, "odell beckham", Canonical("Odell Beckham Jr"))
	// a suffix-looking first token is kept
	assert.Equal(t, "v smith", Canonical("V Smith"))
}

func TestSimilarity_Properties(t *testing.T) {
	for _, name := range []string{"Patrick Mahomes", "Dallas Cowboys", "x"} {
		assert.Equal(t, 1.0, Similarity(name, name))
		assert.Equal(t, 0.0, Similarity(name, ""))
		assert.Equal(t, 0.0, Similarity("", name))
	}
	assert.Equal(t, 1.0, Similarity("Le'Veon Bell", "leveon   bell"))
	assert.Equal(t, 0.0, Similarity("...", "Josh Allen"))
}

func TestSimilarity_Symmetric(t *testing.T) {
	pairs := [][2]string{
		{"Pat Mahomes", "Patrick Mahomes"},
		{"Mike Williams", "Mike Evans"},
		{"Team Awesome", "Team Awsome"},
	}
	for _, p := range pairs {
		assert.InDelta(t, Similarity(p[0], p[1]), Similarity(p[1], p[0]), 1e-9, "%s / %s", p[0], p[1])
	}
}

func TestSimilarity_Ranges(t *testing.T) {
	tests := []struct {
		a, b     string
		min, max float64
	}{
		{"Pat Mahomes", "Patrick Mahomes", 0.70, 0.75},
		{"Patrick Mahomes II", "Patrick Mahomes", 0.82, 0.85},
		{"Josh Allen", "Patrick Mahomes", 0, 0.3},
		{"Dallas Cowboys", "Dalas Cowboys", 0.8, 0.9},
	}
	for _, tt := range tests {
		t.Run(tt.a+"/"+tt.b, func(t *testing.T) {
			got := Similarity(tt.a, tt.b)
			assert.GreaterOrEqual(t, got, tt.min)
			assert.LessOrEqual(t, got, tt.max)
		})
	}
}

func TestCompare_Breakdown(t *testing.T) {
	b := Compare("Pat Mahomes", "Patrick Mahomes")
	assert.InDelta(t, 11.0/15.0, b.Edit, 1e-9)
	assert.InDelta(t, 0.8, b.Phonetic, 1e-9)
	assert.InDelta(t, 1.0/3.0, b.Token, 1e-9)
	assert.InDelta(t, 0.3*b.Edit+0.3*b.JaroWinkler+0.2*b.Phonetic+0.2*b.Token, b.Score, 1e-9)
}

func TestJaroWinkler_ReferenceValues(t *testing.T) {
	assert.InDelta(t, 0.961, JaroWinkler("MARTHA", "MARHTA"), 0.001)
	assert.InDelta(t, 0.813, JaroWinkler("DIXON", "DICKSONX"), 0.001)
	assert.InDelta(t, 0.840, JaroWinkler("DWAYNE", "DUANE"), 0.001)
	assert.Equal(t, 1.0, JaroWinkler("same", "same"))
	assert.Equal(t, 0.0, JaroWinkler("abc", ""))
	assert.Equal(t, 0.0, JaroWinkler("abc", "xyz"))
}

func TestEditSimilarity(t *testing.T) {
	assert.Equal(t, 1.0, EditSimilarity("", ""))
	assert.InDelta(t, 4.0/7.0, EditSimilarity("kitten", "sitting"), 1e-9)
	assert.InDelta(t, 0.5, EditSimilarity("ab", "ac"), 1e-9)
}

func TestMetaphone(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Smith", "SM0"},
		{"Thomson", "0MSN"},
		{"Knight", "NT"},
		{"Philips", "FLPS"},
		{"Phillips", "FLPS"},
		{"Catherine", "K0RN"},
		{"Kathryn", "K0RN"},
		{"Josh", "JX"},
		{"Xavier", "SFR"},
		{"Wright", "RT"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Metaphone(tt.in))
		})
	}
}

func TestPhoneticSimilarity(t *testing.T) {
	assert.Equal(t, 1.0, PhoneticSimilarity("catherine smith", "kathryn smith"))
	// "PT MHMS" vs "PTRK MHMS" compares the shared prefix of each code
	assert.InDelta(t, 0.8, PhoneticSimilarity("pat mahomes", "patrick mahomes"), 1e-9)
	assert.Equal(t, 0.0, PhoneticSimilarity("", "smith"))
}

func TestTokenJaccard(t *testing.T) {
	assert.InDelta(t, 1.0/3.0, TokenJaccard("Pat Mahomes", "Patrick Mahomes"), 1e-9)
	assert.Equal(t, 1.0, TokenJaccard("Mahomes Patrick", "patrick MAHOMES"))
	assert.Equal(t, 0.0, TokenJaccard("", "a"))
}

func TestFindBestMatches(t *testing.T) {
	candidates := []string{"Patrick Mahomes", "Pat Mahomes", "Patrick Mahomes II", "Josh Allen"}

	got := FindBestMatches("Patrick Mahomes", candidates, 0.7, 10)

	require.Len(t, got, 3)
	assert.Equal(t, "Patrick Mahomes", got[0].Candidate)
	assert.Equal(t, "Patrick Mahomes II", got[1].Candidate)
	assert.Equal(t, "Pat Mahomes", got[2].Candidate)
	for i, m := range got {
		assert.GreaterOrEqual(t, m.Score, 0.7)
		assert.LessOrEqual(t, m.Score, 1.0)
		if i > 0 {
			assert.GreaterOrEqual(t, got[i-1].Score, m.Score)
		}
	}

	t.Run("truncates to max results", func(t *testing.T) {
		got := FindBestMatches("Patrick Mahomes", candidates, 0.7, 1)
		require.Len(t, got, 1)
		assert.Equal(t, 0, got[0].Index)
	})

	t.Run("ties keep input order", func(t *testing.T) {
		got := FindBestMatches("Josh Allen", []string{"josh allen", "Josh Allen", "JOSH ALLEN"}, 0.5, 0)
		require.Len(t, got, 3)
		assert.Equal(t, []int{0, 1, 2}, []int{got[0].Index, got[1].Index, got[2].Index})
	})

	t.Run("nothing above threshold", func(t *testing.T) {
		assert.Empty(t, FindBestMatches("Patrick Mahomes", []string{"Josh Allen"}, 0.7, 5))
	})
}

func TestAreEquivalent(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want bool
	}{
		{"normalized equal", "Le'Veon Bell", "leveon bell", true},
		{"substring", "Beckham", "Odell Beckham Jr", true},
		{"initials", "Kansas City", "KC", true},
		{"defense unit", "D/ST", "DST", true},
		{"nickname first name", "Bob Smith", "Robert Smith", true},
		{"bare nicknames", "Bob", "Robert", true},
		{"nickname different surname", "Bob Smith", "Robert Jones", false},
		{"different players", "Mike Williams", "Mike Evans", false},
		{"empty", "", "Mike Evans", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, AreEquivalent(tt.a, tt.b))
		})
	}
}
