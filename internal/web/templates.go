package web

// pageTemplate is the Go html/template for the reader page.
const pageTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>{{if .Title}}{{.Title}} · {{end}}Galatea</title>
  <style>` + styleCSS + `</style>
</head>
<body>
  <main class="reader">
    <header class="reader-header">
      <a class="brand" href="/comic/1">Galatea</a>
      {{if .Ready}}<span class="page-count">Page {{.PageNumber}} of {{.TotalPages}}</span>{{end}}
    </header>
    {{if .Ready}}
    <h1 class="page-title">{{.Title}}</h1>
    <section class="viewer">
      {{if .Prev}}<a class="nav nav-prev" id="prev" href="{{.Prev}}" aria-label="Previous panel">&#8249;</a>{{else}}<span class="nav nav-prev disabled" aria-hidden="true">&#8249;</span>{{end}}
      {{.Panel}}
      {{if .Next}}<a class="nav nav-next" id="next" href="{{.Next}}" aria-label="Next panel">&#8250;</a>{{else}}<span class="nav nav-next disabled" aria-hidden="true">&#8250;</span>{{end}}
    </section>
    <nav class="dots" aria-label="Panels">
      {{range .Dots}}<a class="dot{{if .Current}} current{{end}}" href="{{.Href}}" aria-label="Panel {{.Number}}"{{if .Current}} aria-current="true"{{end}}></a>{{end}}
    </nav>
    {{else}}
    <section class="error">
      <p class="error-message">{{.ErrorMessage}}</p>
      <p class="error-actions">
        <a class="button" href="{{.RetryHref}}">Try again</a>
        <a class="button" href="/comic/1">Return to start</a>
      </p>
    </section>
    {{end}}
  </main>
  <script>
    document.addEventListener('keydown', function (e) {
      var id = e.key === 'ArrowLeft' ? 'prev' : e.key === 'ArrowRight' ? 'next' : null;
      var link = id && document.getElementById(id);
      if (link) { link.click(); }
    });
  </script>
</body>
</html>`

// panelTemplate renders one panel by walking its layers back to front.
const panelTemplate = `<figure class="panel{{if .ClassName}} {{.ClassName}}{{end}}" style="{{.Style}}">
  {{- range .Layers}}
  {{- if eq .Kind "image"}}
  <img class="panel-image" src="{{.Value}}" alt="">
  {{- else if eq .Kind "content"}}
  <div class="panel-content">{{.HTML}}</div>
  {{- else if eq .Kind "narration"}}
  <p class="narration">{{.Value}}</p>
  {{- else if eq .Kind "dialogue"}}
  <p class="dialogue">{{if .Speaker}}<span class="speaker">{{.Speaker}}</span> {{end}}{{.Value}}</p>
  {{- end}}
  {{- end}}
</figure>`

const placeholderHTML = `<figure class="panel panel-broken"><p>This panel could not be displayed.</p></figure>`

const styleCSS = `
body { margin: 0; background: #111; color: #eee; font-family: system-ui, sans-serif; }
.reader { max-width: 960px; margin: 0 auto; padding: 1rem; }
.reader-header { display: flex; justify-content: space-between; align-items: baseline; }
.brand { color: #f5c542; font-weight: 700; text-decoration: none; }
.page-title { font-size: 1.4rem; }
.viewer { display: flex; align-items: center; gap: .5rem; }
.panel { position: relative; flex: 1; margin: 0; overflow: hidden; border-radius: 6px; background: #222; }
.panel-image { width: 100%; height: 100%; object-fit: cover; }
.panel-content { position: absolute; inset: 1rem; }
.narration { position: absolute; top: .5rem; left: .5rem; background: #f5e6b3; color: #222; padding: .4rem .6rem; }
.dialogue { position: absolute; bottom: .5rem; right: .5rem; background: #fff; color: #111; padding: .5rem .8rem; border-radius: 1rem; }
.speaker { font-weight: 700; }
.panel-broken { display: flex; align-items: center; justify-content: center; aspect-ratio: 16 / 9; }
.nav { font-size: 2.5rem; color: #eee; text-decoration: none; padding: 0 .5rem; }
.nav.disabled { opacity: .2; }
.dots { display: flex; justify-content: center; gap: .5rem; margin-top: 1rem; }
.dot { width: .7rem; height: .7rem; border-radius: 50%; background: #555; }
.dot.current { background: #f5c542; }
.error { text-align: center; padding: 3rem 0; }
.button { display: inline-block; margin: 0 .5rem; padding: .5rem 1rem; background: #333; color: #eee; text-decoration: none; border-radius: 4px; }
`
