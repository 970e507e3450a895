package html

import (
	"fmt"
	"html/template"
	"time"

	"github.com/sonnes/cheftrends/core"
)

func funcMap() template.FuncMap {
	return template.FuncMap{
		"formatDate":   formatDate,
		"formatNumber": formatNumber,
		"relativeTime": core.RelativeTime,
	}
}

func formatDate(t time.Time) string {
	return t.Format(core.DateLayout)
}

func formatNumber(n int) string {
	if n < 0 {
		return "-" + formatNumber(-n)
	}
	if n < 1000 {
		return fmt.Sprintf("%d", n)
	}
	return formatNumber(n/1000) + "," + fmt.Sprintf("%03d", n%1000)
}
