package printshop

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var countPrinter = message.NewPrinter(language.English)

func formatCount(v int64) string {
	return countPrinter.Sprintf("%d", v)
}
