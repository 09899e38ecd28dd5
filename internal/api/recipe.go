package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pageza/recipebox/internal/apperr"
	"github.com/pageza/recipebox/internal/middleware"
	"github.com/pageza/recipebox/internal/service"
	"github.com/pageza/recipebox/internal/session"
)

// multipartOverhead is allowed on top of the photo for the text fields and
// multipart framing.
const multipartOverhead = 1 << 20

// multipartMemory is held in memory before uploads spill to temp files.
const multipartMemory = 8 << 20

// recipeForm is what the create and edit pages echo back.
type recipeForm struct {
	Title        string
	Ingredients  string
	Instructions string
}

type RecipeHandler struct {
	recipes       service.IRecipeService
	render        *Renderer
	maxPhotoBytes int64
	log           *zap.Logger
}

func NewRecipeHandler(recipes service.IRecipeService, render *Renderer, maxPhotoBytes int64, log *zap.Logger) *RecipeHandler {
	return &RecipeHandler{
		recipes:       recipes,
		render:        render,
		maxPhotoBytes: maxPhotoBytes,
		log:           log.Named("recipe_handler"),
	}
}

func (h *RecipeHandler) ListRecipes(c *gin.Context) {
	recipes, err := h.recipes.ListAll(c.Request.Context())
	if err != nil {
		h.render.Error(c, err)
		return
	}
	h.render.HTML(c, http.StatusOK, "recipes.html", gin.H{
		"Title":   "All recipes",
		"Recipes": recipes,
	})
}

func (h *RecipeHandler) GetRecipe(c *gin.Context) {
	id, ok := h.recipeID(c)
	if !ok {
		return
	}

	detail, err := h.recipes.Get(c.Request.Context(), id)
	if err != nil {
		h.render.Error(c, err)
		return
	}

	userID, loggedIn := middleware.CurrentUserID(c)
	h.render.HTML(c, http.StatusOK, "recipe.html", gin.H{
		"Title":   detail.Recipe.Title,
		"Detail":  detail,
		"IsOwner": loggedIn && userID == detail.Recipe.UserID,
	})
}

func (h *RecipeHandler) NewRecipeForm(c *gin.Context) {
	h.renderForm(c, http.StatusOK, "/create_recipe", "New recipe", recipeForm{}, "")
}

func (h *RecipeHandler) CreateRecipe(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		h.render.RequireLogin(c)
		return
	}

	in, err := h.readForm(c)
	defer closePhoto(in)
	if err == nil {
		_, err = h.recipes.Create(c.Request.Context(), userID, in)
	}
	if err != nil {
		if errors.Is(err, apperr.ErrValidation) {
			h.renderForm(c, http.StatusUnprocessableEntity, "/create_recipe", "New recipe", formOf(in), apperr.From(err).Message)
			return
		}
		h.render.Error(c, err)
		return
	}

	h.render.Redirect(c, "/dashboard", session.FlashSuccess, "Recipe created successfully!")
}

func (h *RecipeHandler) EditRecipeForm(c *gin.Context) {
	userID, id, ok := h.actorAndRecipe(c)
	if !ok {
		return
	}

	recipe, err := h.recipes.GetOwned(c.Request.Context(), userID, id)
	if err != nil {
		h.render.Error(c, err)
		return
	}

	h.renderForm(c, http.StatusOK, "/edit_recipe/"+id.String(), "Edit recipe", recipeForm{
		Title:        recipe.Title,
		Ingredients:  recipe.Ingredients,
		Instructions: recipe.Instructions,
	}, "")
}

func (h *RecipeHandler) UpdateRecipe(c *gin.Context) {
	userID, id, ok := h.actorAndRecipe(c)
	if !ok {
		return
	}

	in, err := h.readForm(c)
	defer closePhoto(in)
	if err == nil {
		_, err = h.recipes.Update(c.Request.Context(), userID, id, in)
	}
	if err != nil {
		if errors.Is(err, apperr.ErrValidation) {
			h.renderForm(c, http.StatusUnprocessableEntity, "/edit_recipe/"+id.String(), "Edit recipe", formOf(in), apperr.From(err).Message)
			return
		}
		h.render.Error(c, err)
		return
	}

	h.render.Redirect(c, "/recipe/"+id.String(), session.FlashSuccess, "Recipe updated successfully!")
}

func (h *RecipeHandler) DeleteRecipeForm(c *gin.Context) {
	userID, id, ok := h.actorAndRecipe(c)
	if !ok {
		return
	}

	recipe, err := h.recipes.GetOwned(c.Request.Context(), userID, id)
	if err != nil {
		h.render.Error(c, err)
		return
	}

	h.render.HTML(c, http.StatusOK, "delete_recipe.html", gin.H{
		"Title":  "Delete " + recipe.Title,
		"Recipe": recipe,
	})
}

func (h *RecipeHandler) DeleteRecipe(c *gin.Context) {
	userID, id, ok := h.actorAndRecipe(c)
	if !ok {
		return
	}

	if err := h.recipes.Delete(c.Request.Context(), userID, id); err != nil {
		h.render.Error(c, err)
		return
	}

	h.render.Redirect(c, "/dashboard", session.FlashSuccess, "Recipe deleted successfully!")
}

// recipeID parses the :id parameter. Malformed ids render the not found page.
func (h *RecipeHandler) recipeID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.render.Error(c, apperr.NotFound("Recipe"))
		return uuid.Nil, false
	}
	return id, true
}

func (h *RecipeHandler) actorAndRecipe(c *gin.Context) (uuid.UUID, uuid.UUID, bool) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		h.render.RequireLogin(c)
		return uuid.Nil, uuid.Nil, false
	}
	id, ok := h.recipeID(c)
	return userID, id, ok
}

// readForm collects the recipe fields and, when photos are stored, the
// optional photo upload. The caller closes the photo with closePhoto.
func (h *RecipeHandler) readForm(c *gin.Context) (service.RecipeInput, error) {
	photos := h.recipes.PhotosEnabled()
	var in service.RecipeInput

	if photos {
		if h.maxPhotoBytes > 0 {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxPhotoBytes+multipartOverhead)
		}
		err := c.Request.ParseMultipartForm(multipartMemory)
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			return in, h.photoTooLarge()
		case err != nil && !errors.Is(err, http.ErrNotMultipart):
			return in, apperr.Validation("The form could not be read.")
		}
	}

	in.Title = c.PostForm("title")
	in.Ingredients = c.PostForm("ingredients")
	in.Instructions = c.PostForm("instructions")
	if !photos {
		return in, nil
	}

	header, err := c.FormFile("photo")
	if err != nil {
		// No file part, or not a multipart form at all.
		return in, nil
	}
	if h.maxPhotoBytes > 0 && header.Size > h.maxPhotoBytes {
		return in, h.photoTooLarge()
	}
	if header.Size == 0 && header.Filename == "" {
		return in, nil
	}

	contentType := header.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		return in, apperr.Validation("Photo must be an image.")
	}

	file, err := header.Open()
	if err != nil {
		return in, apperr.Validation("Photo could not be read.")
	}
	in.Photo = &service.PhotoUpload{
		Filename:    header.Filename,
		ContentType: contentType,
		Body:        file,
	}
	return in, nil
}

func (h *RecipeHandler) photoTooLarge() error {
	return apperr.Validation(fmt.Sprintf("Photo must be at most %d KB.", h.maxPhotoBytes>>10))
}

func closePhoto(in service.RecipeInput) {
	if in.Photo == nil {
		return
	}
	if closer, ok := in.Photo.Body.(io.Closer); ok {
		closer.Close()
	}
}

func (h *RecipeHandler) renderForm(c *gin.Context, status int, action, heading string, form recipeForm, message string) {
	submit := "Save"
	if action == "/create_recipe" {
		submit = "Create"
	}
	data := gin.H{
		"Title":         heading,
		"Heading":       heading,
		"Action":        action,
		"Submit":        submit,
		"Form":          form,
		"PhotosEnabled": h.recipes.PhotosEnabled(),
	}
	if message != "" {
		data["Error"] = message
	}
	h.render.HTML(c, status, "recipe_form.html", data)
}

func formOf(in service.RecipeInput) recipeForm {
	return recipeForm{Title: in.Title, Ingredients: in.Ingredients, Instructions: in.Instructions}
}
