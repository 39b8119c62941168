package service

import (
	"bytes"
	"fmt"
	"html/template"
	"io"

	"github.com/pinshelf/pinshelf-server/internal/pin"
)

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Title}}</title>
{{- with .Description}}
<meta name="description" content="{{.}}">
{{- end}}
<style>
body{margin:0;font-family:system-ui,sans-serif;background:#fafafa;color:#222}
main{max-width:100%;padding:16px}
[data-product-id]{cursor:pointer}
[data-product-id]:focus-visible{outline:2px solid #2563eb;outline-offset:2px}
</style>
</head>
<body>
<main>
<h1>{{.Title}}</h1>
{{.Overlay}}
{{- with .Description}}
<p>{{.}}</p>
{{- end}}
</main>
<script>
(function () {
  var links = {{.Links}};
  function open(el) {
    var url = links[el.dataset.productId];
    if (url) window.open(url, "_blank", "noopener");
  }
  document.querySelectorAll("[data-product-id]").forEach(function (el) {
    el.addEventListener("click", function () { open(el); });
    el.addEventListener("keydown", function (e) {
      if (e.key === "Enter" || e.key === " ") {
        e.preventDefault();
        open(el);
      }
    });
  });
})();
</script>
</body>
</html>
`))

type pageData struct {
	Title       string
	Description string
	Overlay     template.HTML
	Links       map[string]string
}

// writePage renders a standalone page around the overlay markup. Activation
// of an interactive pin opens the product's affiliate link.
func writePage(w io.Writer, view *RecipeView, overlay *pin.Overlay) error {
	var figure bytes.Buffer
	if err := pin.RenderHTML(&figure, overlay, view.Recipe.Title); err != nil {
		return fmt.Errorf("render overlay: %w", err)
	}

	links := make(map[string]string, len(view.Items))
	for _, item := range view.Items {
		if item.AffiliateURL != "" {
			links[item.ID] = item.AffiliateURL
		}
	}

	return pageTemplate.Execute(w, pageData{
		Title:       view.Recipe.Title,
		Description: view.Recipe.Description,
		Overlay:     template.HTML(figure.String()), // produced by html/template
		Links:       links,
	})
}
