// Package templates holds the HTML components served by the web layer.
package templates

import (
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"
)

// UploadPage is the single page of the UI: a form posting a survey export
// to the import endpoint and a log the page script appends streamed
// progress to.
func UploadPage(maxFileSize int64, previewRows int) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := fmt.Fprintf(w, uploadPageHTML, maxFileSize/(1024*1024), previewRows)
		return err
	})
}

// ErrorAlert renders a user-facing error with its support code.
func ErrorAlert(message, action, code string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := fmt.Fprintf(w,
			`<div class="alert" role="alert"><p>%s</p><p>%s</p><small>Code: %s</small></div>`,
			templ.EscapeString(message),
			templ.EscapeString(action),
			templ.EscapeString(code),
		)
		return err
	})
}

const uploadPageHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Sign survey import</title>
</head>
<body>
<h1>Sign survey import</h1>
<form id="import" method="post" action="/api/photos/import" enctype="multipart/form-data">
<input type="file" name="file" accept=".csv,text/csv" required>
<button type="submit">Import</button>
<small>Up to %d MB. Preview shows the first %d rows.</small>
</form>
<pre id="log"></pre>
<script>
document.getElementById("import").addEventListener("submit", async (ev) => {
  ev.preventDefault();
  const log = document.getElementById("log");
  log.textContent = "";
  const res = await fetch(ev.target.action, {method: "POST", body: new FormData(ev.target)});
  if (!res.ok) {
    const e = await res.json();
    log.textContent = e.message + " (" + e.code + ")";
    return;
  }
  const reader = res.body.pipeThrough(new TextDecoderStream()).getReader();
  let buf = "", ok = 0, failed = 0;
  for (;;) {
    const {value, done} = await reader.read();
    if (done) break;
    buf += value;
    let i;
    while ((i = buf.indexOf("\n")) >= 0) {
      const line = buf.slice(0, i);
      buf = buf.slice(i + 1);
      if (!line.trim()) continue;
      const msg = JSON.parse(line);
      if (msg.type === "complete") {
        ok = msg.results.filter(r => r.success).length;
        failed = msg.results.length - ok;
        log.textContent += "complete: " + ok + " saved, " + failed + " failed\n";
      } else {
        msg.results.forEach(r => r.success ? ok++ : failed++);
        log.textContent += "progress: " + ok + " saved, " + failed + " failed\n";
      }
    }
  }
});
</script>
</body>
</html>
`
