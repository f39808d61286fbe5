package handlers

import (
	"net/http"
	"strings"

	applog "nutricalc/internal/log"
	"nutricalc/internal/nutrition"
	"nutricalc/internal/store"
	"nutricalc/models"
)

type ingredientRequest struct {
	Name     string   `json:"name" validate:"required,max=100"`
	Calories *float64 `json:"calories" validate:"required,gte=0"`
	Protein  *float64 `json:"protein" validate:"required,gte=0"`
	Fat      *float64 `json:"fat" validate:"required,gte=0"`
	Carbs    *float64 `json:"carbs" validate:"required,gte=0"`
}

func (req *ingredientRequest) normalize() {
	req.Name = strings.TrimSpace(req.Name)
}

func (req ingredientRequest) fields() store.IngredientFields {
	return store.IngredientFields{
		Name: req.Name,
		Macros: nutrition.Macros{
			Calories: *req.Calories,
			Protein:  *req.Protein,
			Fat:      *req.Fat,
			Carbs:    *req.Carbs,
		},
	}
}

type ingredientResponse struct {
	ID       uint    `json:"id"`
	Name     string  `json:"name"`
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Fat      float64 `json:"fat"`
	Carbs    float64 `json:"carbs"`
}

func projectIngredient(ingredient models.Ingredient) ingredientResponse {
	return ingredientResponse{
		ID:       ingredient.ID,
		Name:     ingredient.Name,
		Calories: ingredient.Calories,
		Protein:  ingredient.Protein,
		Fat:      ingredient.Fat,
		Carbs:    ingredient.Carbs,
	}
}

// ListIngredients returns the caller's ingredients, filtered by ?search=.
func ListIngredients(w http.ResponseWriter, r *http.Request, identity Identity) {
	search := r.URL.Query().Get("search")
	results, err := records().ListIngredients(r.Context(), identity.UserID, search)
	if err != nil {
		writeStoreError(w, r, err, "load ingredients")
		return
	}

	responses := make([]ingredientResponse, 0, len(results))
	for _, ingredient := range results {
		responses = append(responses, projectIngredient(ingredient))
	}
	applog.Debug(r.Context(), "ingredients listed", "userID", identity.UserID, "count", len(responses), "search", search)
	writeJSON(w, http.StatusOK, responses)
}

// CreateIngredient stores a new ingredient owned by the caller.
func CreateIngredient(w http.ResponseWriter, r *http.Request, identity Identity) {
	var req ingredientRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	ingredient, err := records().CreateIngredient(r.Context(), identity.UserID, req.fields())
	if err != nil {
		writeStoreError(w, r, err, "create ingredient")
		return
	}

	applog.Info(r.Context(), "ingredient created", "userID", identity.UserID, "ingredientID", ingredient.ID)
	writeJSON(w, http.StatusOK, projectIngredient(*ingredient))
}

// ShowIngredient returns one of the caller's ingredients.
func ShowIngredient(w http.ResponseWriter, r *http.Request, identity Identity) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	ingredient, err := records().GetIngredient(r.Context(), identity.UserID, id)
	if err != nil {
		writeStoreError(w, r, err, "load ingredient")
		return
	}
	writeJSON(w, http.StatusOK, projectIngredient(*ingredient))
}

// UpdateIngredient replaces every field of one of the caller's ingredients.
func UpdateIngredient(w http.ResponseWriter, r *http.Request, identity Identity) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req ingredientRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	ingredient, err := records().UpdateIngredient(r.Context(), identity.UserID, id, req.fields())
	if err != nil {
		writeStoreError(w, r, err, "update ingredient")
		return
	}

	applog.Info(r.Context(), "ingredient updated", "userID", identity.UserID, "ingredientID", id)
	writeJSON(w, http.StatusOK, projectIngredient(*ingredient))
}

// DeleteIngredient removes one of the caller's ingredients along with every
// recipe line that uses it.
func DeleteIngredient(w http.ResponseWriter, r *http.Request, identity Identity) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := records().DeleteIngredient(r.Context(), identity.UserID, id); err != nil {
		writeStoreError(w, r, err, "delete ingredient")
		return
	}

	applog.Info(r.Context(), "ingredient deleted", "userID", identity.UserID, "ingredientID", id)
	writeJSON(w, http.StatusOK, messageResponse{Message: "ingredient deleted"})
}
