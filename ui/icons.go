package ui

// Icons are the glyphs the dashboard uses for status. ASCII is for
// terminals or fonts without the Unicode set.
type Icons struct {
	Current string
	Clean   string
	Dirty   string
	Ahead   string
	Behind  string
	Gone    string
	Missing string
}

var unicodeIcons = Icons{
	Current: "▶",
	Clean:   "✓",
	Dirty:   "●",
	Ahead:   "↑",
	Behind:  "↓",
	Gone:    "✗",
	Missing: "?",
}

var asciiIcons = Icons{
	Current: ">",
	Clean:   "ok",
	Dirty:   "*",
	Ahead:   "+",
	Behind:  "-",
	Gone:    "x",
	Missing: "?",
}

func IconSet(ascii bool) Icons {
	if ascii {
		return asciiIcons
	}
	return unicodeIcons
}
