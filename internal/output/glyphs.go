package output

// TreeStyle defines the characters used to draw the space tree
type TreeStyle struct {
	Branch string
	Last   string
	Focus  string
}

var (
	// ASCIIStyle uses plain ASCII characters
	ASCIIStyle = TreeStyle{
		Branch: "|-- ",
		Last:   "`-- ",
		Focus:  "*",
	}

	// UnicodeStyle uses Unicode box drawing characters
	UnicodeStyle = TreeStyle{
		Branch: "├── ",
		Last:   "└── ",
		Focus:  "●",
	}
)

func styleFor(useUnicode bool) TreeStyle {
	if useUnicode {
		return UnicodeStyle
	}
	return ASCIIStyle
}
