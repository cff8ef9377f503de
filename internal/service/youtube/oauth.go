package youtube

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/youtube/v3"
)

// OAuthService manages the authorize-once token flow for installations
// that run YouTube calls under a user account instead of an API key.
type OAuthService struct {
	config    *oauth2.Config
	token     *oauth2.Token
	tokenFile string
	logger    *zap.Logger
}

func NewOAuthService(secretsFile, tokenFile string, logger *zap.Logger) (*OAuthService, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	credBytes, err := os.ReadFile(secretsFile)
	if err != nil {
		return nil, fmt.Errorf("unable to read client secrets file: %w", err)
	}

	config, err := google.ConfigFromJSON(credBytes, youtube.YoutubeReadonlyScope)
	if err != nil {
		return nil, fmt.Errorf("unable to parse client secrets: %w", err)
	}

	svc := &OAuthService{
		config:    config,
		tokenFile: tokenFile,
		logger:    logger,
	}

	token, err := loadToken(tokenFile)
	if err != nil {
		logger.Warn("No existing token found, need to authorize",
			zap.String("file", tokenFile))
		return svc, nil
	}

	svc.token = token
	logger.Info("YouTube OAuth token loaded",
		zap.String("file", tokenFile))

	return svc, nil
}

// Authorize runs the console authorization flow and saves the token.
func (oa *OAuthService) Authorize(ctx context.Context) error {
	if oa == nil {
		return fmt.Errorf("service not initialized")
	}

	authURL := oa.config.AuthCodeURL("state-token", oauth2.AccessTypeOffline)

	oa.logger.Info("Authorization required")
	fmt.Println("\n=== YouTube API Authorization ===")
	fmt.Println("Go to the following link in your browser:")
	fmt.Println(authURL)
	fmt.Println("\nAfter authorization, enter the code here:")

	var code string
	if _, err := fmt.Scan(&code); err != nil {
		return fmt.Errorf("unable to read authorization code: %w", err)
	}

	token, err := oa.config.Exchange(ctx, code)
	if err != nil {
		return fmt.Errorf("unable to retrieve token: %w", err)
	}

	if err := saveToken(oa.tokenFile, token); err != nil {
		return fmt.Errorf("unable to save token: %w", err)
	}

	oa.token = token

	oa.logger.Info("YouTube OAuth authorization complete",
		zap.String("token_file", oa.tokenFile))

	return nil
}

func (oa *OAuthService) IsAuthorized() bool {
	return oa != nil && oa.token != nil
}

// HTTPClient returns a client that refreshes the token as needed.
func (oa *OAuthService) HTTPClient(ctx context.Context) (*http.Client, error) {
	if !oa.IsAuthorized() {
		return nil, fmt.Errorf("not authorized, run the authorization flow first")
	}
	return oa.config.Client(ctx, oa.token), nil
}

func loadToken(file string) (*oauth2.Token, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	token := &oauth2.Token{}
	err = json.NewDecoder(f).Decode(token)
	return token, err
}

func saveToken(file string, token *oauth2.Token) error {
	f, err := os.OpenFile(file, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	defer f.Close()

	return json.NewEncoder(f).Encode(token)
}
