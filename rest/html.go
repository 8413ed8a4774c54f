// Copyright (c) 2025 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package rest

import (
	"bytes"
	"html/template"
)

// HTML renders bodies as text/html by executing tmpl with the encoded
// body as its data. Pair it with [JSON] so clients asking for
// application/json still receive the raw body:
//
//	tmpl := template.Must(template.New("greeting").Parse(`<h1>{{.greeting}}</h1>`))
//	e = e.WithResponseRepresentations(rest.JSON(), rest.HTML(tmpl))
func HTML(tmpl *template.Template) Representation {
	return Representation{
		ContentType: "text/html",
		Stringify: func(v any) ([]byte, error) {
			var buf bytes.Buffer
			err := tmpl.Execute(&buf, v)
			if err != nil {
				return nil, err
			}
			return buf.Bytes(), nil
		},
	}
}
