package config

import (
	"log/slog"
	"time"
)

const DefaultDeepLink = "easyfin-login://login"

// NewDefaultConfig creates a new Config with sensible development defaults.
// The JWT secret is left empty; see SigningSecret.
func NewDefaultConfig() *Config {
	return &Config{
		Environment: EnvDevelopment,
		PublicURL:   "",
		DBPath:      "easyfin.db",
		Server: Server{
			Addr:                    ":3001",
			ShutdownGracefulTimeout: Duration{Duration: 15 * time.Second},
			ReadTimeout:             Duration{Duration: 5 * time.Second},
			ReadHeaderTimeout:       Duration{Duration: 2 * time.Second},
			// Must exceed Google.Timeout, the provider round trip runs inside the handler.
			WriteTimeout:        Duration{Duration: 15 * time.Second},
			IdleTimeout:         Duration{Duration: 1 * time.Minute},
			ClientIpProxyHeader: "",
		},
		Jwt: Jwt{
			Secret:        "",
			TokenDuration: Duration{Duration: 7 * 24 * time.Hour},
		},
		Google: Google{
			AuthURL:      "https://accounts.google.com/o/oauth2/v2/auth",
			TokenURL:     "https://oauth2.googleapis.com/token",
			UserInfoURL:  "https://www.googleapis.com/oauth2/v2/userinfo",
			TokenInfoURL: "https://oauth2.googleapis.com/tokeninfo",
			Scopes: []string{
				"https://www.googleapis.com/auth/userinfo.profile",
				"https://www.googleapis.com/auth/userinfo.email",
			},
			AccessType: "offline",
			Prompt:     "consent",
			Timeout:    Duration{Duration: 10 * time.Second},
		},
		Cors: Cors{
			AllowedOrigins: []string{
				"https://dangnghia.me",
				"https://admin.dangnghia.me",
				"http://localhost:3001",
				"http://localhost:3002",
				"http://localhost:8081",
				"http://10.0.2.2:3001",
				"http://10.0.2.2:3002",
				"http://172.28.192.1:3001",
				"http://172.28.192.1:3002",
			},
			AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Content-Type", "Authorization", "Accept", "X-Requested-With"},
			AllowCredentials: true,
			PathPrefix:       "/api/",
		},
		Redirect: Redirect{
			DefaultURI:  DefaultDeepLink,
			AllowedURIs: []string{DefaultDeepLink},
		},
		Onboarding: Onboarding{
			Account: DefaultAccount{
				Name:     "Ví tiền mặt",
				Type:     "CASH",
				Currency: "VND",
				Icon:     "💵",
				Color:    "#4CAF50",
			},
			Notification: WelcomeNotification{
				Title:    "Chào mừng đến với EasyFin! 🎉",
				Message:  "Bắt đầu quản lý tài chính của bạn ngay hôm nay.",
				Type:     "INFO",
				Category: "SYSTEM",
			},
		},
		Endpoints: Endpoints{
			AuthGoogleStart:      "GET /api/auth/google/start",
			AuthGoogleCallback:   "GET /api/auth/google/callback",
			AuthWithGoogle:       "POST /api/auth/google",
			AuthWithPassword:     "POST /api/auth/login",
			RegisterWithPassword: "POST /api/auth/register",
			AuthMe:               "GET /api/auth/me",
			ListAccounts:         "GET /api/accounts",
			ListNotifications:    "GET /api/notifications",
			AdminListUsers:       "GET /api/admin/users",
			AdminUpdateUser:      "PATCH /api/admin/users/:id",
		},
		Log: Log{
			Level:  LogLevel{Level: slog.LevelInfo},
			Format: LogFormatText,
			Request: LogRequest{
				Activated: true,
				Limits: LogRequestLimits{
					URILength:       512, // Minimum: 64
					UserAgentLength: 256, // Minimum: 32
					RefererLength:   512, // Minimum: 64
					RemoteIPLength:  64,  // Minimum: 15
				},
			},
		},
		Metrics: Metrics{
			Activated:  true,
			Endpoint:   "GET /metrics",
			AllowedIPs: []string{"127.0.0.1", "::1"},
		},
		BlockIp: BlockIp{
			Activated:     true,
			Level:         "medium",
			BlockDuration: Duration{Duration: 3 * time.Minute},
		},
		Cache: Cache{
			Level:   "small",
			UserTTL: Duration{Duration: 30 * time.Second},
		},
		BlockRequestBody: BlockRequestBody{
			Activated:     true,
			Limit:         1 << 20, // 1MB
			ExcludedPaths: []string{},
		},
	}
}
