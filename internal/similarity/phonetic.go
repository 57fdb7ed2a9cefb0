package similarity

import "strings"

// Metaphone returns a simplified Metaphone code for one word. Letters outside
// A-Z are ignored.
func Metaphone(word string) string {
	s := make([]byte, 0, len(word))
	for _, r := range strings.ToUpper(word) {
		if r >= 'A' && r <= 'Z' {
			c := byte(r)
			if n := len(s); n > 0 && s[n-1] == c && c != 'C' {
				continue
			}
			s = append(s, c)
		}
	}
	if len(s) == 0 {
		return ""
	}

	at := func(i int) byte {
		if i < 0 || i >= len(s) {
			return 0
		}
		return s[i]
	}

	switch {
	case len(s) > 1 && strings.Contains("KN GN PN WR AE", string(s[:2])):
		s = s[1:]
	case s[0] == 'X':
		s[0] = 'S'
	case len(s) > 1 && s[0] == 'W' && s[1] == 'H':
		s = append([]byte{'W'}, s[2:]...)
	}

	var out strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch c {
		case 'A', 'E', 'I', 'O', 'U':
			if i == 0 {
				out.WriteByte(c)
			}
		case 'B':
			if !(i == len(s)-1 && at(i-1) == 'M') {
				out.WriteByte('B')
			}
		case 'C':
			switch {
			case at(i+1) == 'H' && at(i-1) == 'S':
				out.WriteByte('K')
			case at(i+1) == 'H':
				out.WriteByte('X')
			case isFrontVowel(at(i + 1)):
				if at(i-1) != 'S' {
					out.WriteByte('S')
				}
			default:
				out.WriteByte('K')
			}
		case 'D':
			if at(i+1) == 'G' && isFrontVowel(at(i+2)) {
				out.WriteByte('J')
				i++
			} else {
				out.WriteByte('T')
			}
		case 'G':
			switch {
			case at(i+1) == 'H' && i+2 < len(s) && !isVowel(at(i+2)):
			case at(i+1) == 'N' && (i+2 == len(s) || (at(i+2) == 'E' && at(i+3) == 'D')):
			case isFrontVowel(at(i + 1)):
				out.WriteByte('J')
			default:
				out.WriteByte('K')
			}
		case 'H':
			if isVowel(at(i+1)) && !strings.ContainsRune("CGPST", rune(at(i-1))) {
				out.WriteByte('H')
			}
		case 'K':
			if at(i-1) != 'C' {
				out.WriteByte('K')
			}
		case 'P':
			if at(i+1) == 'H' {
				out.WriteByte('F')
			} else {
				out.WriteByte('P')
			}
		case 'Q':
			out.WriteByte('K')
		case 'S':
			switch {
			case at(i+1) == 'H':
				out.WriteByte('X')
			case at(i+1) == 'I' && (at(i+2) == 'O' || at(i+2) == 'A'):
				out.WriteByte('X')
			default:
				out.WriteByte('S')
			}
		case 'T':
			switch {
			case at(i+1) == 'I' && (at(i+2) == 'O' || at(i+2) == 'A'):
				out.WriteByte('X')
			case at(i+1) == 'H':
				out.WriteByte('0')
			case at(i+1) == 'C' && at(i+2) == 'H':
			default:
				out.WriteByte('T')
			}
		case 'V':
			out.WriteByte('F')
		case 'W', 'Y':
			if isVowel(at(i + 1)) {
				out.WriteByte(c)
			}
		case 'X':
			out.WriteString("KS")
		case 'Z':
			out.WriteByte('S')
		default:
			out.WriteByte(c)
		}
	}
	return out.String()
}

// PhoneticKey encodes every token of a name and joins the codes with spaces.
func PhoneticKey(s string) string {
	return strings.Join(phoneticCodes(Tokens(s)), " ")
}

func phoneticCodes(tokens []string) []string {
	codes := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if code := Metaphone(t); code != "" {
			codes = append(codes, code)
		}
	}
	return codes
}

func isVowel(c byte) bool {
	return c == 'A' || c == 'E' || c == 'I' || c == 'O' || c == 'U'
}

func isFrontVowel(c byte) bool {
	return c == 'E' || c == 'I' || c == 'Y'
}
