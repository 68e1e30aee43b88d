package chrome

import (
	"fmt"
	"strings"

	"github.com/chromedp/chromedp"

	"github.com/odvcencio/browserd/pkg/browser"
)

// resolveSelector maps a wire selector to a chromedp query. CSS-shaped
// strategies go through ByQuery; the link-text strategies have no CSS
// equivalent and are synthesized as XPath. Unknown strategy tags fall
// back to css.
func resolveSelector(sel browser.Selector) (string, chromedp.QueryOption, error) {
	value := sel.Value
	if strings.TrimSpace(value) == "" {
		return "", nil, browser.NewDriverError("bad_selector", "selector is required")
	}

	switch sel.Type {
	case browser.SelectorXPath:
		return value, chromedp.BySearch, nil
	case browser.SelectorID:
		return fmt.Sprintf("[id=%q]", value), chromedp.ByQuery, nil
	case browser.SelectorName:
		return fmt.Sprintf("[name=%q]", value), chromedp.ByQuery, nil
	case browser.SelectorLinkText:
		return "//a[normalize-space(.)=" + xpathLiteral(value) + "]", chromedp.BySearch, nil
	case browser.SelectorPartialLinkText:
		return "//a[contains(normalize-space(.)," + xpathLiteral(value) + ")]", chromedp.BySearch, nil
	case browser.SelectorTag:
		return value, chromedp.ByQuery, nil
	case browser.SelectorClass:
		return "." + value, chromedp.ByQuery, nil
	case browser.SelectorCSS, "":
		return value, chromedp.ByQuery, nil
	default:
		return value, chromedp.ByQuery, nil
	}
}

// xpathLiteral quotes a string for use inside an XPath expression.
// XPath 1.0 has no escape sequences, so strings containing both quote
// kinds are assembled with concat().
func xpathLiteral(s string) string {
	if !strings.Contains(s, `"`) {
		return `"` + s + `"`
	}
	if !strings.Contains(s, "'") {
		return "'" + s + "'"
	}
	var b strings.Builder
	b.WriteString("concat(")
	for i, part := range strings.Split(s, `"`) {
		if i > 0 {
			b.WriteString(`,'"',`)
		}
		b.WriteString(`"` + part + `"`)
	}
	b.WriteString(")")
	return b.String()
}
