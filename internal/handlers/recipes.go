package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	applog "nutricalc/internal/log"
	"nutricalc/internal/nutrition"
	"nutricalc/internal/store"
	"nutricalc/models"
)

var recipeAggregations = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "nutricalc_recipe_aggregations_total",
		Help: "Number of recipe nutrient aggregations computed, by endpoint.",
	},
	[]string{"endpoint"},
)

type recipeLineRequest struct {
	IngredientID uint     `json:"ingredient_id" validate:"required"`
	Quantity     *float64 `json:"quantity" validate:"required,gt=0"`
}

type recipeRequest struct {
	Name        string              `json:"name" validate:"required,max=100"`
	Ingredients []recipeLineRequest `json:"ingredients" validate:"required,dive"`
}

func (req *recipeRequest) normalize() {
	req.Name = strings.TrimSpace(req.Name)
}

func (req recipeRequest) lines() []store.RecipeLine {
	lines := make([]store.RecipeLine, 0, len(req.Ingredients))
	for _, item := range req.Ingredients {
		lines = append(lines, store.RecipeLine{IngredientID: item.IngredientID, Quantity: *item.Quantity})
	}
	return lines
}

type recipeLineResponse struct {
	IngredientID uint    `json:"ingredient_id"`
	Quantity     float64 `json:"quantity"`
}

type recipeResponse struct {
	ID          uint                 `json:"id"`
	Name        string               `json:"name"`
	Ingredients []recipeLineResponse `json:"ingredients"`
}

// recipeResult carries the rounded totals next to the recipe identity.
type recipeResult struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
	nutrition.Totals
}

func projectRecipe(recipe models.Recipe) recipeResponse {
	lines := make([]recipeLineResponse, 0, len(recipe.Items))
	for _, item := range recipe.Items {
		lines = append(lines, recipeLineResponse{IngredientID: item.IngredientID, Quantity: item.Quantity})
	}
	return recipeResponse{ID: recipe.ID, Name: recipe.Name, Ingredients: lines}
}

type recipeListQuery struct {
	name        string
	minCalories *float64
	orderBy     string
}

// parseRecipeListQuery reads ?name=, ?min_calories= and ?order_by=. A
// malformed min_calories is reported as a validation failure; unknown
// order_by values are ignored.
func parseRecipeListQuery(r *http.Request) (recipeListQuery, map[string]string) {
	values := r.URL.Query()
	query := recipeListQuery{name: values.Get("name")}

	if raw := strings.TrimSpace(values.Get("min_calories")); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return query, map[string]string{"min_calories": "min_calories must be a number"}
		}
		query.minCalories = &parsed
	}

	switch order := values.Get("order_by"); order {
	case "calories", "-calories":
		query.orderBy = order
	}
	return query, nil
}

// ListRecipes returns the caller's recipes with their totals. Filtering and
// ordering by calories use the rounded total.
func ListRecipes(w http.ResponseWriter, r *http.Request, identity Identity) {
	query, invalid := parseRecipeListQuery(r)
	if invalid != nil {
		writeJSON(w, http.StatusUnprocessableEntity, validationError{Error: "validation failed", Fields: invalid})
		return
	}

	results, err := records().ListRecipes(r.Context(), identity.UserID, query.name)
	if err != nil {
		writeStoreError(w, r, err, "load recipes")
		return
	}

	ranked := make([]nutrition.Ranked[models.Recipe], 0, len(results))
	for _, recipe := range results {
		ranked = append(ranked, nutrition.Ranked[models.Recipe]{Item: recipe, Totals: recipe.Totals()})
	}
	recipeAggregations.WithLabelValues("list").Add(float64(len(ranked)))

	if query.minCalories != nil {
		ranked = nutrition.AtLeastCalories(ranked, *query.minCalories)
	}
	if query.orderBy != "" {
		nutrition.SortByCalories(ranked, query.orderBy == "-calories")
	}

	responses := make([]recipeResult, 0, len(ranked))
	for _, entry := range ranked {
		responses = append(responses, recipeResult{ID: entry.Item.ID, Name: entry.Item.Name, Totals: entry.Totals})
	}
	applog.Debug(r.Context(), "recipes listed", "userID", identity.UserID, "count", len(responses), "orderBy", query.orderBy)
	writeJSON(w, http.StatusOK, responses)
}

// CreateRecipe stores a recipe built from the caller's ingredients.
func CreateRecipe(w http.ResponseWriter, r *http.Request, identity Identity) {
	var req recipeRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	recipe, err := records().CreateRecipe(r.Context(), identity.UserID, req.Name, req.lines())
	if err != nil {
		writeStoreError(w, r, err, "create recipe")
		return
	}

	applog.Info(r.Context(), "recipe created", "userID", identity.UserID, "recipeID", recipe.ID, "lines", len(recipe.Items))
	writeJSON(w, http.StatusOK, projectRecipe(*recipe))
}

// ShowRecipe returns one of the caller's recipes with its rounded totals.
func ShowRecipe(w http.ResponseWriter, r *http.Request, identity Identity) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	recipe, err := records().GetRecipe(r.Context(), identity.UserID, id)
	if err != nil {
		writeStoreError(w, r, err, "load recipe")
		return
	}

	recipeAggregations.WithLabelValues("result").Inc()
	writeJSON(w, http.StatusOK, recipeResult{ID: recipe.ID, Name: recipe.Name, Totals: recipe.Totals()})
}

// UpdateRecipe renames a recipe and replaces its full ingredient list.
func UpdateRecipe(w http.ResponseWriter, r *http.Request, identity Identity) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req recipeRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	recipe, err := records().UpdateRecipe(r.Context(), identity.UserID, id, req.Name, req.lines())
	if err != nil {
		writeStoreError(w, r, err, "update recipe")
		return
	}

	applog.Info(r.Context(), "recipe updated", "userID", identity.UserID, "recipeID", id, "lines", len(recipe.Items))
	writeJSON(w, http.StatusOK, projectRecipe(*recipe))
}

// DeleteRecipe removes one of the caller's recipes and its lines.
func DeleteRecipe(w http.ResponseWriter, r *http.Request, identity Identity) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := records().DeleteRecipe(r.Context(), identity.UserID, id); err != nil {
		writeStoreError(w, r, err, "delete recipe")
		return
	}

	applog.Info(r.Context(), "recipe deleted", "userID", identity.UserID, "recipeID", id)
	writeJSON(w, http.StatusOK, messageResponse{Message: "recipe deleted"})
}
