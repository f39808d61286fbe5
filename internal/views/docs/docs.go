// Package docs renders the HTML API reference served at /docs.
package docs

import (
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"
)

// Endpoint describes one route of the JSON API.
type Endpoint struct {
	Method  string
	Path    string
	Auth    bool
	Body    string
	Summary string
}

// Endpoints lists the public API in the order it is documented.
func Endpoints() []Endpoint {
	return []Endpoint{
		{"POST", "/auth/register", false, "{username, password}", "Create an account. A taken username answers {\"error\":\"username taken\"}."},
		{"POST", "/auth/login", false, "{username, password}", "Start a session cookie. Wrong credentials answer {\"error\":\"bad credentials\"}."},
		{"POST", "/auth/logout", false, "", "End the current session."},
		{"GET", "/auth/me", false, "", "Username of the signed-in caller."},
		{"GET", "/api/ingredients", true, "?search=", "List your ingredients, optionally filtered by name."},
		{"POST", "/api/ingredients", true, "{name, calories, protein, fat, carbs}", "Create an ingredient. Values are per 100 g."},
		{"GET", "/api/ingredients/{id}", true, "", "Show one ingredient."},
		{"PUT", "/api/ingredients/{id}", true, "{name, calories, protein, fat, carbs}", "Replace every field of an ingredient."},
		{"DELETE", "/api/ingredients/{id}", true, "", "Delete an ingredient and remove it from your recipes."},
		{"GET", "/api/recipes", true, "?name=&min_calories=&order_by=calories|-calories", "List your recipes with their totals."},
		{"POST", "/api/recipes", true, "{name, ingredients: [{ingredient_id, quantity}]}", "Create a recipe. Quantities are grams."},
		{"GET", "/api/recipes/{id}", true, "", "Totals of one recipe, rounded to two decimals."},
		{"PUT", "/api/recipes/{id}", true, "{name, ingredients: [...]}", "Rename a recipe and replace all of its ingredients."},
		{"DELETE", "/api/recipes/{id}", true, "", "Delete a recipe."},
		{"GET", "/healthz", false, "", "Liveness and database status."},
		{"GET", "/metrics", false, "", "Prometheus metrics."},
	}
}

// APIReference renders a standalone HTML page describing endpoints.
func APIReference(endpoints []Endpoint) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, `<!DOCTYPE html><html lang="en"><head><meta charset="utf-8"><title>nutricalc API</title></head><body><main><h1>nutricalc API</h1><p>Authenticated routes need the session cookie set by /auth/login.</p><table><thead><tr><th>Method</th><th>Path</th><th>Auth</th><th>Body</th><th>Description</th></tr></thead><tbody>`); err != nil {
			return err
		}
		for _, endpoint := range endpoints {
			if err := endpointRow(endpoint).Render(ctx, w); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, `</tbody></table></main></body></html>`)
		return err
	})
}

func endpointRow(endpoint Endpoint) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		auth := "public"
		if endpoint.Auth {
			auth = "session"
		}
		_, err := fmt.Fprintf(w, `<tr data-auth="%s"><td><code>%s</code></td><td><code>%s</code></td><td>%s</td><td><code>%s</code></td><td>%s</td></tr>`,
			auth,
			templ.EscapeString(endpoint.Method),
			templ.EscapeString(endpoint.Path),
			auth,
			templ.EscapeString(endpoint.Body),
			templ.EscapeString(endpoint.Summary),
		)
		return err
	})
}
