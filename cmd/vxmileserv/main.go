// Copyright 2013 Bobby Powers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
package main

import (
	"fmt"
	"html/template"
	"io"
	"log"
	"net/http"

	"github.com/sdxlate/vxmile/convert"
)

const formTmpl = `<!DOCTYPE html PUBLIC "-//W3C//DTD XHTML 1.0 Strict//EN"
          "http://www.w3.org/TR/xhtml1/DTD/xhtml1-strict.dtd">
<html>
    <head>
	<meta charset="utf-8"></meta>
        <title>convert Vensim to XMILE</title>

        <link href="https://fonts.googleapis.com/css?family=Droid+Sans|Droid+Sans+Mono" rel="stylesheet" type="text/css" />
        <meta name="viewport" content="width=device-width, initial-scale=1.0">
    </head>

    <body>
        <p>choose a Vensim .mdl file to convert to XMILE</p>
        <form action="/api/v1/convert/" enctype="multipart/form-data" method="post">
            <input type="file" name="data">
            <input type="submit" value="Convert">
        </form>
    </body>
</html>
`

// decacheHandler wraps a handler with headers that keep browsers and
// intermediate caches from serving a stale converted file for a
// resubmitted form.
type decacheHandler struct {
	h http.Handler
}

func (d *decacheHandler) ServeHTTP(rw http.ResponseWriter, r *http.Request) {
	rw.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	rw.Header().Set("Pragma", "no-cache")
	d.h.ServeHTTP(rw, r)
}

type rootHandler struct{}

func (*rootHandler) ServeHTTP(rw http.ResponseWriter, r *http.Request) {
	rw.Header().Set("Content-Type", "text/html; charset=utf-8")

	form := template.Must(template.New("").Parse(formTmpl))
	if err := form.Execute(rw, nil); err != nil {
		log.Printf("tmpl.Execute: %v\n", err)
	}
}

type convertHandler struct{}

func (*convertHandler) ServeHTTP(rw http.ResponseWriter, r *http.Request) {
	contents, err := io.ReadAll(r.Body)
	if err != nil {
		log.Printf("err: %s", err)
		fmt.Fprintf(rw, "an unknown error occurred. please try a different file.")
		return
	}

	doc, ok := convert.Convert(contents, convert.Options{})
	if !ok {
		log.Printf("convert.Convert failed:\n%s", convert.GetLog())
		fmt.Fprintf(rw, "could not convert that file: %s", convert.GetLog())
		return
	}

	rw.Header().Set("Content-Type", "application/xmile; charset=utf-8")
	rw.Header().Set("Content-Description", "File Transfer")
	rw.Header().Set("Content-Disposition", `attachment; filename="converted.xmile"`)
	rw.Header().Set("Content-Transfer-Encoding", "binary")
	rw.Write(doc)
}

func main() {
	http.Handle("/", &decacheHandler{&rootHandler{}})
	http.Handle("/api/v1/convert/", &decacheHandler{&convertHandler{}})

	if err := http.ListenAndServe(":8010", nil); err != nil {
		log.Printf("ListenAndServe: %s", err)
	}
}
