package core

import (
	"net/http"
	"strconv"
	"time"

	"github.com/easyfin/easyfin/db"
)

const (
	defaultNotificationLimit = 50
	maxNotificationLimit     = 100
)

type accountView struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Type     string `json:"type"`
	Balance  int64  `json:"balance"`
	Currency string `json:"currency"`
	Icon     string `json:"icon"`
	Color    string `json:"color"`
}

type notificationView struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Type      string    `json:"type"`
	Category  string    `json:"category"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"createdAt"`
}

// ListAccountsHandler returns the caller's accounts.
// Endpoint: GET /api/accounts
// Authenticated: Yes
func (a *App) ListAccountsHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		WriteJsonError(w, errorJwtInvalidToken)
		return
	}

	accounts, err := a.DbFinance().ListAccounts(user.ID)
	if err != nil {
		a.Logger().Error("failed to list accounts", "user_id", user.ID, "error", err)
		WriteJsonError(w, errorInternal)
		return
	}

	views := make([]accountView, 0, len(accounts))
	for _, acc := range accounts {
		views = append(views, accountView{
			ID:       acc.ID,
			Name:     acc.Name,
			Type:     acc.Type,
			Balance:  acc.Balance,
			Currency: acc.Currency,
			Icon:     acc.Icon,
			Color:    acc.Color,
		})
	}

	writeJsonWithData(w, http.StatusOK, JsonWithData{
		Data: map[string]any{"accounts": views},
	})
}

// ListNotificationsHandler returns the caller's newest notifications.
// Endpoint: GET /api/notifications?limit=
// Authenticated: Yes
func (a *App) ListNotificationsHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		WriteJsonError(w, errorJwtInvalidToken)
		return
	}

	limit, err := queryInt(r, "limit", defaultNotificationLimit, 1, maxNotificationLimit)
	if err != nil {
		WriteJsonError(w, errorInvalidRequest)
		return
	}

	notifications, err := a.DbFinance().ListNotifications(user.ID, limit)
	if err != nil {
		a.Logger().Error("failed to list notifications", "user_id", user.ID, "error", err)
		WriteJsonError(w, errorInternal)
		return
	}

	views := make([]notificationView, 0, len(notifications))
	for _, n := range notifications {
		views = append(views, newNotificationView(n))
	}

	writeJsonWithData(w, http.StatusOK, JsonWithData{
		Data: map[string]any{"notifications": views},
	})
}

func newNotificationView(n *db.Notification) notificationView {
	return notificationView{
		ID:        n.ID,
		Title:     n.Title,
		Message:   n.Message,
		Type:      n.Type,
		Category:  n.Category,
		Read:      n.Read,
		CreatedAt: n.Created,
	}
}

// queryInt reads an integer query parameter. Missing means def; values
// outside [min, max] are an error.
func queryInt(r *http.Request, name string, def, min, max int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, err
	}
	if v < min || v > max {
		return 0, strconv.ErrRange
	}
	return v, nil
}
