// Package users decides who may talk to the bot and which Todoist account
// receives their appointments.
package users

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

const (
	// DefaultKey is the config entry used for users without their own entry.
	DefaultKey = "default"
	// DefaultEventTitle is the task title when a user config has none.
	DefaultEventTitle = "Стрижка"
)

// UserConfig is the Todoist setup of one user.
type UserConfig struct {
	TodoistToken string `json:"todoist_token"`
	EventTitle   string `json:"event_title"`
	AddComment   bool   `json:"add_comment"`
}

// Registry holds the allow list and the per-user configuration.
// It is immutable after construction.
type Registry struct {
	allowed map[string]struct{}
	configs map[string]UserConfig
}

// NewRegistry builds a registry from the raw ALLOWED_USERS and USERS_CONFIG
// values. fallbackToken becomes the default config when usersConfig is blank.
// Malformed input is logged and treated as empty.
func NewRegistry(allowedUsers, usersConfig, fallbackToken string, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}

	allowed, err := parseAllowed(allowedUsers)
	if err != nil {
		logger.Error("failed to parse ALLOWED_USERS", slog.String("error", err.Error()))
		allowed = nil
	}
	if len(allowed) == 0 {
		logger.Warn("ALLOWED_USERS is empty, the bot answers everyone")
	}

	configs, err := parseConfigs(usersConfig, fallbackToken)
	if err != nil {
		logger.Error("failed to parse USERS_CONFIG", slog.String("error", err.Error()))
		configs = nil
	}
	logger.Info("loaded user configuration", slog.Int("users", len(configs)))

	r := &Registry{
		allowed: make(map[string]struct{}, len(allowed)),
		configs: configs,
	}
	for _, id := range allowed {
		r.allowed[id] = struct{}{}
	}
	if r.configs == nil {
		r.configs = map[string]UserConfig{}
	}
	return r
}

func parseAllowed(raw string) ([]string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}

	if !strings.HasPrefix(raw, "[") {
		var ids []string
		for _, part := range strings.Split(raw, ",") {
			if id := strings.TrimSpace(part); id != "" {
				ids = append(ids, id)
			}
		}
		return ids, nil
	}

	var items []json.RawMessage
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, errors.Wrap(err, "invalid JSON array")
	}
	ids := make([]string, 0, len(items))
	for _, item := range items {
		var s string
		if err := json.Unmarshal(item, &s); err == nil {
			ids = append(ids, strings.TrimSpace(s))
			continue
		}
		var n json.Number
		if err := json.Unmarshal(item, &n); err != nil {
			return nil, errors.Errorf("unsupported user id %s", string(item))
		}
		ids = append(ids, n.String())
	}
	return ids, nil
}

func parseConfigs(raw, fallbackToken string) (map[string]UserConfig, error) {
	if strings.TrimSpace(raw) == "" {
		if strings.TrimSpace(fallbackToken) == "" {
			return map[string]UserConfig{}, nil
		}
		return map[string]UserConfig{
			DefaultKey: {TodoistToken: fallbackToken, EventTitle: DefaultEventTitle, AddComment: true},
		}, nil
	}

	var entries map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		return nil, errors.Wrap(err, "invalid JSON object")
	}

	configs := make(map[string]UserConfig, len(entries))
	for id, entry := range entries {
		configs[id] = decodeConfig(entry)
	}
	return configs, nil
}

// decodeConfig accepts either a bare token string or an object. Values of
// any other shape yield a config without a token.
func decodeConfig(entry json.RawMessage) UserConfig {
	cfg := UserConfig{EventTitle: DefaultEventTitle, AddComment: true}

	var token string
	if err := json.Unmarshal(entry, &token); err == nil {
		cfg.TodoistToken = token
		return cfg
	}

	var obj struct {
		TodoistToken *string `json:"todoist_token"`
		EventTitle   *string `json:"event_title"`
		AddComment   *bool   `json:"add_comment"`
	}
	if err := json.Unmarshal(entry, &obj); err != nil {
		return cfg
	}
	if obj.TodoistToken != nil {
		cfg.TodoistToken = *obj.TodoistToken
	}
	if obj.EventTitle != nil && *obj.EventTitle != "" {
		cfg.EventTitle = *obj.EventTitle
	}
	if obj.AddComment != nil {
		cfg.AddComment = *obj.AddComment
	}
	return cfg
}

func key(userID int64) string {
	return strconv.FormatInt(userID, 10)
}

// IsAllowed reports whether userID may use the bot. An empty allow list
// allows everyone.
func (r *Registry) IsAllowed(userID int64) bool {
	if len(r.allowed) == 0 {
		return true
	}
	_, ok := r.allowed[key(userID)]
	return ok
}

// Config returns the user's own config or the default one.
func (r *Registry) Config(userID int64) (UserConfig, bool) {
	if cfg, ok := r.configs[key(userID)]; ok {
		return cfg, true
	}
	cfg, ok := r.configs[DefaultKey]
	return cfg, ok
}

// HasTodoist reports whether a token is configured for userID.
func (r *Registry) HasTodoist(userID int64) bool {
	cfg, ok := r.Config(userID)
	return ok && strings.TrimSpace(cfg.TodoistToken) != ""
}

// ConfiguredUsers returns the numeric user IDs that have their own entry,
// sorted ascending. The default entry and non-numeric keys are skipped.
func (r *Registry) ConfiguredUsers() []int64 {
	ids := make([]int64, 0, len(r.configs))
	for k := range r.configs {
		if k == DefaultKey {
			continue
		}
		id, err := strconv.ParseInt(k, 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// NotifyTargets returns the configured users other than creator that are
// allowed to use the bot.
func (r *Registry) NotifyTargets(creator int64) []int64 {
	var targets []int64
	for _, id := range r.ConfiguredUsers() {
		if id != creator && r.IsAllowed(id) {
			targets = append(targets, id)
		}
	}
	return targets
}

// String describes the registry for startup logs.
func (r *Registry) String() string {
	return fmt.Sprintf("users{allowed=%d, configured=%d}", len(r.allowed), len(r.configs))
}
