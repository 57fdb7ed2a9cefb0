package similarity

// nicknames maps a common short form to its formal first name.
var nicknames = map[string]string{
	"al":      "albert",
	"alex":    "alexander",
	"andy":    "andrew",
	"ben":     "benjamin",
	"bill":    "william",
	"billy":   "william",
	"bob":     "robert",
	"bobby":   "robert",
	"cam":     "cameron",
	"chris":   "christopher",
	"dan":     "daniel",
	"danny":   "daniel",
	"dave":    "david",
	"ed":      "edward",
	"eddie":   "edward",
	"greg":    "gregory",
	"jake":    "jacob",
	"jim":     "james",
	"jimmy":   "james",
	"joe":     "joseph",
	"joey":    "joseph",
	"jon":     "jonathan",
	"josh":    "joshua",
	"ken":     "kenneth",
	"kenny":   "kenneth",
	"larry":   "lawrence",
	"matt":    "matthew",
	"mike":    "michael",
	"mikey":   "michael",
	"nate":    "nathan",
	"nick":    "nicholas",
	"pat":     "patrick",
	"pete":    "peter",
	"rob":     "robert",
	"ron":     "ronald",
	"sam":     "samuel",
	"steve":   "steven",
	"ted":     "theodore",
	"tim":     "timothy",
	"tom":     "thomas",
	"tommy":   "thomas",
	"tony":    "anthony",
	"trey":    "tremaine",
	"will":    "william",
	"zach":    "zachary",
	"zack":    "zachary",
}

var formalNames = func() map[string]bool {
	m := make(map[string]bool, len(nicknames))
	for _, formal := range nicknames {
		m[formal] = true
	}
	return m
}()

// formalName returns the formal first name for a normalized token and
// whether the token appears in the nickname table at all.
func formalName(token string) (string, bool) {
	if formal, ok := nicknames[token]; ok {
		return formal, true
	}
	return token, formalNames[token]
}

// NicknameRelated reports whether two normalized first names are the same
// person's name under the nickname table, for example "bob" and "robert".
func NicknameRelated(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	fa, oka := formalName(a)
	fb, okb := formalName(b)
	return oka && okb && fa == fb
}
