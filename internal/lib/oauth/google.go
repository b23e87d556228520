// Package oauth реализует вход через OAuth 2.0 провайдера Google.
//
// Provider выдаёт ссылку на страницу согласия и обменивает код авторизации
// на профиль пользователя (models.OAuthProfile).
package oauth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/magabrotheeeer/subscription-tracker/internal/models"
)

// ProviderGoogle название провайдера, сохраняемое у пользователя.
const ProviderGoogle = "google"

const defaultGoogleUserInfoURL = "https://openidconnect.googleapis.com/v1/userinfo"

// ErrEmailNotVerified провайдер не подтвердил email пользователя.
var ErrEmailNotVerified = errors.New("oauth: email is not verified")

// GoogleConfig параметры OAuth клиента Google.
// AuthURL, TokenURL и UserInfoURL можно переопределить в тестах.
type GoogleConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string

	AuthURL     string
	TokenURL    string
	UserInfoURL string
}

// GoogleProvider реализует OAuth вход через Google.
type GoogleProvider struct {
	cfg         *oauth2.Config
	userInfoURL string
}

// NewGoogleProvider создаёт GoogleProvider.
func NewGoogleProvider(c GoogleConfig) *GoogleProvider {
	endpoint := google.Endpoint
	if c.AuthURL != "" {
		endpoint.AuthURL = c.AuthURL
	}
	if c.TokenURL != "" {
		endpoint.TokenURL = c.TokenURL
	}
	endpoint.AuthStyle = oauth2.AuthStyleInParams

	userInfoURL := c.UserInfoURL
	if userInfoURL == "" {
		userInfoURL = defaultGoogleUserInfoURL
	}

	return &GoogleProvider{
		cfg: &oauth2.Config{
			ClientID:     c.ClientID,
			ClientSecret: c.ClientSecret,
			RedirectURL:  c.RedirectURL,
			Endpoint:     endpoint,
			Scopes:       []string{"openid", "email", "profile"},
		},
		userInfoURL: userInfoURL,
	}
}

// Name возвращает название провайдера.
func (p *GoogleProvider) Name() string {
	return ProviderGoogle
}

// AuthCodeURL возвращает ссылку на страницу согласия Google.
func (p *GoogleProvider) AuthCodeURL(state string) string {
	return p.cfg.AuthCodeURL(state, oauth2.AccessTypeOnline)
}

type googleUserInfo struct {
	Sub           string `json:"sub"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
}

// Exchange обменивает код авторизации на токен и загружает профиль пользователя.
func (p *GoogleProvider) Exchange(ctx context.Context, code string) (*models.OAuthProfile, error) {
	const op = "oauth.GoogleProvider.Exchange"

	token, err := p.cfg.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%s: exchange code: %w", op, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.userInfoURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	resp, err := p.cfg.Client(ctx, token).Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: fetch user info: %w", op, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("%s: user info status %d: %s", op, resp.StatusCode, body)
	}

	var info googleUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("%s: decode user info: %w", op, err)
	}
	if info.Sub == "" {
		return nil, fmt.Errorf("%s: empty subject in user info", op)
	}
	if !info.EmailVerified {
		return nil, fmt.Errorf("%s: %w", op, ErrEmailNotVerified)
	}

	return &models.OAuthProfile{
		Provider:          ProviderGoogle,
		ProviderAccountID: info.Sub,
		Email:             info.Email,
		Name:              info.Name,
		Thumbnail:         info.Picture,
	}, nil
}

// GenerateState возвращает случайное значение параметра state.
func GenerateState() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("oauth.GenerateState: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
