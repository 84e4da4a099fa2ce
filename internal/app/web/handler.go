// Package web serves the HTML interface: one handler per method and path,
// each performing a single lookup or mutation and rendering a template or
// issuing a redirect.
package web

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	app "github.com/blogly-app/blogly/internal/app"
	"github.com/blogly-app/blogly/internal/app/domain/post"
	"github.com/blogly-app/blogly/internal/app/domain/tag"
	"github.com/blogly-app/blogly/internal/app/domain/user"
	"github.com/blogly-app/blogly/internal/app/metrics"
	"github.com/blogly-app/blogly/internal/app/services/posts"
	"github.com/blogly-app/blogly/internal/app/storage"
	"github.com/blogly-app/blogly/internal/app/web/forms"
	"github.com/blogly-app/blogly/pkg/logger"
)

// handler bundles the HTML endpoints for the application services.
type handler struct {
	app   *app.Application
	log   *logger.Logger
	pages map[string]*template.Template
}

// NewHandler returns a router exposing the full HTML surface plus the
// operational endpoints (/healthz, /metrics).
func NewHandler(application *app.Application, log *logger.Logger) (*mux.Router, error) {
	if log == nil {
		log = logger.NewDefault("web")
	}
	pages, err := parseTemplates()
	if err != nil {
		return nil, err
	}

	h := &handler{app: application, log: log, pages: pages}

	r := mux.NewRouter()
	r.HandleFunc("/", h.home).Methods(http.MethodGet)

	r.HandleFunc("/users", h.listUsers).Methods(http.MethodGet)
	r.HandleFunc("/users/new", h.newUserForm).Methods(http.MethodGet)
	r.HandleFunc("/users/new", h.createUser).Methods(http.MethodPost)
	r.HandleFunc("/users/{id:[0-9]+}", h.showUser).Methods(http.MethodGet)
	r.HandleFunc("/users/{id:[0-9]+}/edit", h.editUserForm).Methods(http.MethodGet)
	r.HandleFunc("/users/{id:[0-9]+}/edit", h.updateUser).Methods(http.MethodPost)
	r.HandleFunc("/users/{id:[0-9]+}/delete", h.deleteUser).Methods(http.MethodPost)
	r.HandleFunc("/users/{id:[0-9]+}/posts/new", h.newPostForm).Methods(http.MethodGet)
	r.HandleFunc("/users/{id:[0-9]+}/posts/new", h.createPost).Methods(http.MethodPost)

	r.HandleFunc("/posts/{id:[0-9]+}", h.showPost).Methods(http.MethodGet)
	r.HandleFunc("/posts/{id:[0-9]+}/edit", h.editPostForm).Methods(http.MethodGet)
	r.HandleFunc("/posts/{id:[0-9]+}/edit", h.updatePost).Methods(http.MethodPost)
	r.HandleFunc("/posts/{id:[0-9]+}/delete", h.deletePost).Methods(http.MethodPost)

	r.HandleFunc("/tags", h.listTags).Methods(http.MethodGet)
	r.HandleFunc("/tags/new", h.newTagForm).Methods(http.MethodGet)
	r.HandleFunc("/tags/new", h.createTag).Methods(http.MethodPost)
	r.HandleFunc("/tags/{id:[0-9]+}", h.showTag).Methods(http.MethodGet)
	r.HandleFunc("/tags/{id:[0-9]+}/edit", h.editTagForm).Methods(http.MethodGet)
	r.HandleFunc("/tags/{id:[0-9]+}/edit", h.updateTag).Methods(http.MethodPost)
	r.HandleFunc("/tags/{id:[0-9]+}/delete", h.deleteTag).Methods(http.MethodPost)

	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}).Methods(http.MethodGet)
	r.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)

	r.NotFoundHandler = http.HandlerFunc(h.notFound)

	return r, nil
}

// --- Users ------------------------------------------------------------------

func (h *handler) home(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/users", http.StatusFound)
}

func (h *handler) listUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.app.Users.List(r.Context())
	if err != nil {
		h.serverError(w, err)
		return
	}
	h.render(w, http.StatusOK, "user_list.html", struct {
		Users []user.User
	}{users})
}

type userFormData struct {
	User   user.User
	Errors forms.Errors
}

func (h *handler) newUserForm(w http.ResponseWriter, _ *http.Request) {
	h.render(w, http.StatusOK, "user_new.html", userFormData{Errors: forms.Errors{}})
}

func (h *handler) createUser(w http.ResponseWriter, r *http.Request) {
	form, ok := h.parseForm(w, r)
	if !ok {
		return
	}
	firstName := form.Required("first_name", user.MaxNameLength)
	lastName := form.Required("last_name", user.MaxNameLength)
	imageURL := form.Get("image_url")

	if !form.Valid() {
		h.render(w, http.StatusBadRequest, "user_new.html", userFormData{
			User:   user.User{FirstName: firstName, LastName: lastName, ImageURL: imageURL},
			Errors: form.Errors,
		})
		return
	}

	if _, err := h.app.Users.Create(r.Context(), firstName, lastName, imageURL); err != nil {
		h.serviceError(w, err)
		return
	}
	http.Redirect(w, r, "/users", http.StatusFound)
}

func (h *handler) showUser(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	u, err := h.app.Users.Get(r.Context(), id)
	if err != nil {
		h.serviceError(w, err)
		return
	}
	userPosts, err := h.app.Posts.ListByUser(r.Context(), id)
	if err != nil {
		h.serverError(w, err)
		return
	}
	h.render(w, http.StatusOK, "user_detail.html", struct {
		User  user.User
		Posts []post.Post
	}{u, userPosts})
}

func (h *handler) editUserForm(w http.ResponseWriter, r *http.Request) {
	u, err := h.app.Users.Get(r.Context(), pathID(r))
	if err != nil {
		h.serviceError(w, err)
		return
	}
	h.render(w, http.StatusOK, "user_edit.html", userFormData{User: u, Errors: forms.Errors{}})
}

func (h *handler) updateUser(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	if _, err := h.app.Users.Get(r.Context(), id); err != nil {
		h.serviceError(w, err)
		return
	}

	form, ok := h.parseForm(w, r)
	if !ok {
		return
	}
	firstName := form.Required("first_name", user.MaxNameLength)
	lastName := form.Required("last_name", user.MaxNameLength)
	imageURL := form.Get("image_url")

	if !form.Valid() {
		h.render(w, http.StatusBadRequest, "user_edit.html", userFormData{
			User:   user.User{ID: id, FirstName: firstName, LastName: lastName, ImageURL: imageURL},
			Errors: form.Errors,
		})
		return
	}

	if _, err := h.app.Users.Update(r.Context(), id, firstName, lastName, imageURL); err != nil {
		h.serviceError(w, err)
		return
	}
	http.Redirect(w, r, "/users", http.StatusFound)
}

func (h *handler) deleteUser(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	if _, err := h.app.Users.Get(r.Context(), id); err != nil {
		h.serviceError(w, err)
		return
	}
	if err := h.app.Users.Delete(r.Context(), id); err != nil {
		h.serviceError(w, err)
		return
	}
	http.Redirect(w, r, "/users", http.StatusFound)
}

// --- Posts ------------------------------------------------------------------

type postFormData struct {
	User    user.User
	Post    post.Post
	Tags    []tag.Tag
	Checked map[int64]bool
	Errors  forms.Errors
}

func (h *handler) newPostForm(w http.ResponseWriter, r *http.Request) {
	u, err := h.app.Users.Get(r.Context(), pathID(r))
	if err != nil {
		h.serviceError(w, err)
		return
	}
	allTags, err := h.app.Tags.List(r.Context())
	if err != nil {
		h.serverError(w, err)
		return
	}
	h.render(w, http.StatusOK, "post_new.html", postFormData{
		User:    u,
		Tags:    allTags,
		Checked: map[int64]bool{},
		Errors:  forms.Errors{},
	})
}

func (h *handler) createPost(w http.ResponseWriter, r *http.Request) {
	u, err := h.app.Users.Get(r.Context(), pathID(r))
	if err != nil {
		h.serviceError(w, err)
		return
	}

	form, ok := h.parseForm(w, r)
	if !ok {
		return
	}
	title := form.Required("title", post.MaxTitleLength)
	content := form.Required("content", 0)
	tagIDs := form.IDs("tags")

	if !form.Valid() {
		allTags, err := h.app.Tags.List(r.Context())
		if err != nil {
			h.serverError(w, err)
			return
		}
		h.render(w, http.StatusBadRequest, "post_new.html", postFormData{
			User:    u,
			Post:    post.Post{Title: title, Content: content},
			Tags:    allTags,
			Checked: checkedSet(tagIDs),
			Errors:  form.Errors,
		})
		return
	}

	if _, err := h.app.Posts.Create(r.Context(), u.ID, title, content, tagIDs); err != nil {
		if errors.Is(err, posts.ErrUnknownTag) {
			allTags, terr := h.app.Tags.List(r.Context())
			if terr != nil {
				h.serverError(w, terr)
				return
			}
			form.Errors["tags"] = "Unknown tag selected."
			h.render(w, http.StatusBadRequest, "post_new.html", postFormData{
				User:    u,
				Post:    post.Post{Title: title, Content: content},
				Tags:    allTags,
				Checked: checkedSet(tagIDs),
				Errors:  form.Errors,
			})
			return
		}
		h.serviceError(w, err)
		return
	}
	http.Redirect(w, r, fmt.Sprintf("/users/%d", u.ID), http.StatusFound)
}

func (h *handler) showPost(w http.ResponseWriter, r *http.Request) {
	p, err := h.app.Posts.Get(r.Context(), pathID(r))
	if err != nil {
		h.serviceError(w, err)
		return
	}
	author, err := h.app.Users.Get(r.Context(), p.UserID)
	if err != nil {
		h.serverError(w, err)
		return
	}
	postTags, err := h.app.Posts.Tags(r.Context(), p.ID)
	if err != nil {
		h.serverError(w, err)
		return
	}
	h.render(w, http.StatusOK, "post_detail.html", struct {
		Post   post.Post
		Author user.User
		Tags   []tag.Tag
	}{p, author, postTags})
}

func (h *handler) editPostForm(w http.ResponseWriter, r *http.Request) {
	p, err := h.app.Posts.Get(r.Context(), pathID(r))
	if err != nil {
		h.serviceError(w, err)
		return
	}
	allTags, err := h.app.Tags.List(r.Context())
	if err != nil {
		h.serverError(w, err)
		return
	}
	postTags, err := h.app.Posts.Tags(r.Context(), p.ID)
	if err != nil {
		h.serverError(w, err)
		return
	}
	checked := make(map[int64]bool, len(postTags))
	for _, t := range postTags {
		checked[t.ID] = true
	}
	h.render(w, http.StatusOK, "post_edit.html", postFormData{
		Post:    p,
		Tags:    allTags,
		Checked: checked,
		Errors:  forms.Errors{},
	})
}

func (h *handler) updatePost(w http.ResponseWriter, r *http.Request) {
	p, err := h.app.Posts.Get(r.Context(), pathID(r))
	if err != nil {
		h.serviceError(w, err)
		return
	}

	form, ok := h.parseForm(w, r)
	if !ok {
		return
	}
	title := form.Required("title", post.MaxTitleLength)
	content := form.Required("content", 0)
	tagIDs := form.IDs("tags")

	if !form.Valid() {
		allTags, err := h.app.Tags.List(r.Context())
		if err != nil {
			h.serverError(w, err)
			return
		}
		h.render(w, http.StatusBadRequest, "post_edit.html", postFormData{
			Post:    post.Post{ID: p.ID, Title: title, Content: content},
			Tags:    allTags,
			Checked: checkedSet(tagIDs),
			Errors:  form.Errors,
		})
		return
	}

	if _, err := h.app.Posts.Update(r.Context(), p.ID, title, content, tagIDs); err != nil {
		if errors.Is(err, posts.ErrUnknownTag) {
			allTags, terr := h.app.Tags.List(r.Context())
			if terr != nil {
				h.serverError(w, terr)
				return
			}
			form.Errors["tags"] = "Unknown tag selected."
			h.render(w, http.StatusBadRequest, "post_edit.html", postFormData{
				Post:    post.Post{ID: p.ID, Title: title, Content: content},
				Tags:    allTags,
				Checked: checkedSet(tagIDs),
				Errors:  form.Errors,
			})
			return
		}
		h.serviceError(w, err)
		return
	}
	http.Redirect(w, r, fmt.Sprintf("/posts/%d", p.ID), http.StatusFound)
}

func (h *handler) deletePost(w http.ResponseWriter, r *http.Request) {
	p, err := h.app.Posts.Get(r.Context(), pathID(r))
	if err != nil {
		h.serviceError(w, err)
		return
	}
	if err := h.app.Posts.Delete(r.Context(), p.ID); err != nil {
		h.serviceError(w, err)
		return
	}
	http.Redirect(w, r, fmt.Sprintf("/users/%d", p.UserID), http.StatusFound)
}

// --- Tags -------------------------------------------------------------------

type tagFormData struct {
	Tag    tag.Tag
	Errors forms.Errors
}

func (h *handler) listTags(w http.ResponseWriter, r *http.Request) {
	allTags, err := h.app.Tags.List(r.Context())
	if err != nil {
		h.serverError(w, err)
		return
	}
	h.render(w, http.StatusOK, "tag_list.html", struct {
		Tags []tag.Tag
	}{allTags})
}

func (h *handler) newTagForm(w http.ResponseWriter, _ *http.Request) {
	h.render(w, http.StatusOK, "tag_new.html", tagFormData{Errors: forms.Errors{}})
}

func (h *handler) createTag(w http.ResponseWriter, r *http.Request) {
	form, ok := h.parseForm(w, r)
	if !ok {
		return
	}
	name := form.Required("name", 0)

	if form.Valid() {
		_, err := h.app.Tags.Create(r.Context(), name)
		switch {
		case err == nil:
			http.Redirect(w, r, "/tags", http.StatusFound)
			return
		case errors.Is(err, storage.ErrDuplicate):
			form.Errors["name"] = "A tag with this name already exists."
		default:
			h.serviceError(w, err)
			return
		}
	}

	h.render(w, http.StatusBadRequest, "tag_new.html", tagFormData{
		Tag:    tag.Tag{Name: name},
		Errors: form.Errors,
	})
}

func (h *handler) showTag(w http.ResponseWriter, r *http.Request) {
	t, err := h.app.Tags.Get(r.Context(), pathID(r))
	if err != nil {
		h.serviceError(w, err)
		return
	}
	tagPosts, err := h.app.Tags.Posts(r.Context(), t.ID)
	if err != nil {
		h.serverError(w, err)
		return
	}
	h.render(w, http.StatusOK, "tag_detail.html", struct {
		Tag   tag.Tag
		Posts []post.Post
	}{t, tagPosts})
}

func (h *handler) editTagForm(w http.ResponseWriter, r *http.Request) {
	t, err := h.app.Tags.Get(r.Context(), pathID(r))
	if err != nil {
		h.serviceError(w, err)
		return
	}
	h.render(w, http.StatusOK, "tag_edit.html", tagFormData{Tag: t, Errors: forms.Errors{}})
}

func (h *handler) updateTag(w http.ResponseWriter, r *http.Request) {
	t, err := h.app.Tags.Get(r.Context(), pathID(r))
	if err != nil {
		h.serviceError(w, err)
		return
	}

	form, ok := h.parseForm(w, r)
	if !ok {
		return
	}
	name := form.Required("name", 0)

	if form.Valid() {
		_, err := h.app.Tags.Update(r.Context(), t.ID, name)
		switch {
		case err == nil:
			http.Redirect(w, r, "/tags", http.StatusFound)
			return
		case errors.Is(err, storage.ErrDuplicate):
			form.Errors["name"] = "A tag with this name already exists."
		default:
			h.serviceError(w, err)
			return
		}
	}

	h.render(w, http.StatusBadRequest, "tag_edit.html", tagFormData{
		Tag:    tag.Tag{ID: t.ID, Name: name},
		Errors: form.Errors,
	})
}

func (h *handler) deleteTag(w http.ResponseWriter, r *http.Request) {
	t, err := h.app.Tags.Get(r.Context(), pathID(r))
	if err != nil {
		h.serviceError(w, err)
		return
	}
	if err := h.app.Tags.Delete(r.Context(), t.ID); err != nil {
		h.serviceError(w, err)
		return
	}
	http.Redirect(w, r, "/tags", http.StatusFound)
}

// --- Helpers ----------------------------------------------------------------

// pathID returns the {id} route variable. Routes constrain it to digits, so a
// parse failure cannot happen for matched requests.
func pathID(r *http.Request) int64 {
	id, _ := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	return id
}

func checkedSet(ids []int64) map[int64]bool {
	set := make(map[int64]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}

func (h *handler) parseForm(w http.ResponseWriter, r *http.Request) (*forms.Form, bool) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "malformed form submission", http.StatusBadRequest)
		return nil, false
	}
	return forms.New(r.PostForm), true
}

// serviceError maps a service failure onto the right HTML response: missing
// rows become a 404 page, everything else a 500.
func (h *handler) serviceError(w http.ResponseWriter, err error) {
	if errors.Is(err, storage.ErrNotFound) {
		h.notFound(w, nil)
		return
	}
	h.serverError(w, err)
}

func (h *handler) notFound(w http.ResponseWriter, _ *http.Request) {
	h.render(w, http.StatusNotFound, "not_found.html", nil)
}

func (h *handler) serverError(w http.ResponseWriter, err error) {
	h.log.WithError(err).Error("request failed")
	h.render(w, http.StatusInternalServerError, "server_error.html", nil)
}

func (h *handler) render(w http.ResponseWriter, status int, page string, data any) {
	tmpl, ok := h.pages[page]
	if !ok {
		h.log.Errorf("unknown template %s", page)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	// Render to a buffer first so a template failure cannot leave a half
	// written 200 response.
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "base", data); err != nil {
		h.log.WithError(err).Errorf("render %s", page)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}
