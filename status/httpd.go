package status

import (
	"context"
	"fmt"
	htmltemplate "html/template"
	"log"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/PowerDNS/markerstream/config"
)

// Register adds the status page and metrics handlers to mux
func Register(mux *http.ServeMux, c config.Config) {
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/", &Page{c: c})
}

// StartHTTPServer starts the status server in the background if an address
// is configured.
func StartHTTPServer(c config.Config) {
	if c.HTTP.Address == "" {
		logrus.Info("HTTP status server disabled")
		return
	}
	logrus.WithField("address", c.HTTP.Address).Info("HTTP status server enabled")
	Register(http.DefaultServeMux, c)
	go func() {
		err := http.ListenAndServe(c.HTTP.Address, nil)
		logrus.Fatalf("HTTP server error: %v", err)
	}()
}

type Page struct {
	c config.Config
}

const statusTemplateString = `<!DOCTYPE html>
<html>
<head>
	<meta charset="UTF-8">
	<title>markerstream status</title>
	<style>
		body          { font-family: sans-serif; }
		table, td, th { border: 1px solid #ccc; border-collapse: collapse; }
		td, th        { padding: 5px; text-align: left; }
		td.size       { text-align: right; }
		td.error      { background-color: #ffb8b8; }
		a             { text-decoration: none; color: #3c6ac5; }
	</style>
</head>
<body>
	<h1>markerstream status</h1>
	<p>
		<a href="/metrics">Prometheus metrics</a>
	</p>

	<h2>Tree</h2>
	{{ if .HasTree }}
	<table>
		<tr><th>Resources</th><td>{{ .Tree.Resources }}</td></tr>
		<tr><th>Markers</th><td>{{ .Tree.Markers }}</td></tr>
		<tr><th>Dirty</th><td>{{ .Tree.Dirty }}</td></tr>
	</table>
	{{ else }}
	<p>No tree loaded</p>
	{{ end }}

	<h2>Blobs</h2>
	{{ if .BlobsErr }}
	<table><tr><td class="error">{{ .BlobsErr }}</td></tr></table>
	{{ else }}
	<table>
		<tr><th>Name</th><th>Size</th></tr>
		{{ range .Blobs }}
		<tr><td>{{ .Name }}</td><td class="size">{{ .Size.HumanReadable }}</td></tr>
		{{ end }}
	</table>
	{{ end }}

	<h2>Config</h2>
	<pre>{{ .Config.String }}</pre>

</body>
</html>`

var statusTemplate *htmltemplate.Template

func init() {
	var err error
	statusTemplate, err = htmltemplate.New("status").Parse(statusTemplateString)
	if err != nil {
		log.Fatalf("BUG: Error in status HTML template: %v", err)
	}
}

func (p *Page) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()
	blobs, err := gi.ListBlobs(ctx, p.c.Instance+"__")
	tree, hasTree := gi.TreeInfo()

	data := struct {
		Config   config.Config
		Tree     TreeInfo
		HasTree  bool
		Blobs    []BlobInfo
		BlobsErr error
	}{
		Config:   p.c,
		Tree:     tree,
		HasTree:  hasTree,
		Blobs:    blobs,
		BlobsErr: err,
	}

	err = statusTemplate.Execute(w, data)
	if err != nil {
		w.WriteHeader(500)
		_, _ = w.Write([]byte(fmt.Sprintf("Template execution error: %v", err)))
	}
}
