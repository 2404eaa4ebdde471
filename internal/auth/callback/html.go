package callback

import (
	"fmt"
	"html"
	"net/url"
	"sort"
	"strings"
)

// successPage is shown in the operator's browser once the authorization
// redirect has been received.
const successPage = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <title>Authorization result</title>
    <style>
        body {
            font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif;
            display: flex;
            justify-content: center;
            align-items: center;
            min-height: 100vh;
            margin: 0;
            background: #f3f4f6;
        }
        .container {
            text-align: center;
            background: white;
            padding: 2.5rem;
            border-radius: 12px;
            box-shadow: 0 10px 25px rgba(0,0,0,0.1);
            max-width: 480px;
        }
        h1 { color: #10b981; font-size: 1.4rem; }
    </style>
</head>
<body>
    <div class="container">
        <h1>Authorization complete</h1>
        <p>The authorization redirect was received. You can close this window
        and return to the terminal.</p>
    </div>
</body>
</html>`

const errorPageTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <title>Authorization result</title>
    <style>
        body {
            font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif;
            display: flex;
            justify-content: center;
            align-items: center;
            min-height: 100vh;
            margin: 0;
            background: #f3f4f6;
        }
        .container {
            text-align: center;
            background: white;
            padding: 2.5rem;
            border-radius: 12px;
            box-shadow: 0 10px 25px rgba(0,0,0,0.1);
            max-width: 480px;
        }
        h1 { color: #dc2626; font-size: 1.4rem; }
        dl { text-align: left; }
        dt { font-weight: 600; }
    </style>
</head>
<body>
    <div class="container">
        <h1>Authorization failed</h1>
        <p>The provider redirected back with an error:</p>
        <dl>%s</dl>
    </div>
</body>
</html>`

// renderErrorPage lists every error-shaped query parameter the provider
// sent back, so the operator sees the complete reason in the browser.
func renderErrorPage(query url.Values) string {
	keys := make([]string, 0, len(query))
	for k := range query {
		if k == "error" || strings.HasPrefix(k, "error_") {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	var items strings.Builder
	for _, k := range keys {
		items.WriteString(fmt.Sprintf("<dt>%s</dt><dd>%s</dd>",
			html.EscapeString(k), html.EscapeString(query.Get(k))))
	}
	return fmt.Sprintf(errorPageTemplate, items.String())
}
