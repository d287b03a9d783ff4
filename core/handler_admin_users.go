package core

import (
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"time"

	"github.com/easyfin/easyfin/db"
)

const (
	defaultUserPageSize = 50
	maxUserPageSize     = 200
)

type adminUserView struct {
	PublicUser
	Active    bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
}

func newAdminUserView(u *db.User) adminUserView {
	return adminUserView{
		PublicUser: newPublicUser(u),
		Active:     u.Active,
		CreatedAt:  u.Created,
	}
}

// AdminListUsersHandler lists users, newest first.
// Endpoint: GET /api/admin/users?limit=&offset=
// Authenticated: Yes, role admin
func (a *App) AdminListUsersHandler(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", defaultUserPageSize, 1, maxUserPageSize)
	if err != nil {
		WriteJsonError(w, errorInvalidRequest)
		return
	}
	offset, err := queryInt(r, "offset", 0, 0, math.MaxInt32)
	if err != nil {
		WriteJsonError(w, errorInvalidRequest)
		return
	}

	users, err := a.DbUserAdmin().ListUsers(limit, offset)
	if err != nil {
		a.Logger().Error("failed to list users", "error", err)
		WriteJsonError(w, errorInternal)
		return
	}

	views := make([]adminUserView, 0, len(users))
	for _, u := range users {
		views = append(views, newAdminUserView(u))
	}

	writeJsonWithData(w, http.StatusOK, JsonWithData{
		Data: map[string]any{"users": views},
	})
}

// AdminUpdateUserHandler locks or unlocks a user. A lock applies to the
// user's existing sessions on their next request.
// Endpoint: PATCH /api/admin/users/:id
// Authenticated: Yes, role admin
// Allowed Mimetype: application/json
func (a *App) AdminUpdateUserHandler(w http.ResponseWriter, r *http.Request) {
	if resp, err := a.Validator().ContentType(r, MimeTypeJSON); err != nil {
		WriteJsonError(w, resp)
		return
	}

	id := a.params.Get(r.Context()).ByName("id")
	if id == "" {
		WriteJsonError(w, errorInvalidRequest)
		return
	}

	var req struct {
		Active *bool `json:"isActive"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Active == nil {
		WriteJsonError(w, errorInvalidRequest)
		return
	}

	if caller, ok := UserFromContext(r.Context()); ok && caller.ID == id && !*req.Active {
		WriteJsonError(w, errorCannotDeactivateSelf)
		return
	}

	err := a.DbUserAdmin().SetUserActive(id, *req.Active)
	if errors.Is(err, db.ErrUserNotFound) {
		WriteJsonError(w, errorNotFound)
		return
	}
	if err != nil {
		a.Logger().Error("failed to update user", "user_id", id, "error", err)
		WriteJsonError(w, errorInternal)
		return
	}

	a.Cache().Del(userCacheKey(id))
	a.Logger().Info("user active flag changed", "user_id", id, "active", *req.Active)

	user, err := a.DbAuth().GetUserById(id)
	if err != nil || user == nil {
		a.Logger().Error("failed to read updated user", "user_id", id, "error", err)
		WriteJsonError(w, errorInternal)
		return
	}

	writeJsonWithData(w, http.StatusOK, JsonWithData{
		Data: map[string]any{"user": newAdminUserView(user)},
	})
}
