package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"google.golang.org/api/option"

	"github.com/tamu-thinktank/website-sub002/config"
)

// ErrInvalidIDToken 第三方身份令牌无效或已过期
var ErrInvalidIDToken = errors.New("身份令牌无效")

// Identity 身份提供方验证通过后的用户信息
type Identity struct {
	UID           string
	Email         string
	EmailVerified bool
	Name          string
}

// Verifier 身份令牌校验接口（便于在测试中替换）
type Verifier interface {
	Verify(ctx context.Context, idToken string) (*Identity, error)
}

// FirebaseVerifier 基于 Firebase Authentication 的实现
type FirebaseVerifier struct {
	client *auth.Client
}

// NewFirebaseVerifier 初始化 Firebase App 并获取 Auth 客户端
// 未配置凭据时使用 Application Default Credentials
func NewFirebaseVerifier(ctx context.Context, cfg *config.FirebaseConfig) (*FirebaseVerifier, error) {
	var opts []option.ClientOption
	switch {
	case cfg.CredentialsJSON != "":
		opts = append(opts, option.WithCredentialsJSON([]byte(cfg.CredentialsJSON)))
	case cfg.CredentialsFile != "":
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}

	var fbCfg *firebase.Config
	if cfg.ProjectID != "" {
		fbCfg = &firebase.Config{ProjectID: cfg.ProjectID}
	}

	app, err := firebase.NewApp(ctx, fbCfg, opts...)
	if err != nil {
		return nil, fmt.Errorf("初始化 Firebase 失败: %w", err)
	}

	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("获取 Firebase Auth 客户端失败: %w", err)
	}

	return &FirebaseVerifier{client: client}, nil
}

// Verify 校验 ID Token，返回其中的身份信息
func (v *FirebaseVerifier) Verify(ctx context.Context, idToken string) (*Identity, error) {
	if strings.TrimSpace(idToken) == "" {
		return nil, ErrInvalidIDToken
	}

	token, err := v.client.VerifyIDToken(ctx, idToken)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidIDToken, err)
	}

	return fromToken(token), nil
}

func fromToken(token *auth.Token) *Identity {
	id := &Identity{UID: token.UID}
	if email, ok := token.Claims["email"].(string); ok {
		id.Email = strings.ToLower(email)
	}
	if verified, ok := token.Claims["email_verified"].(bool); ok {
		id.EmailVerified = verified
	}
	if name, ok := token.Claims["name"].(string); ok {
		id.Name = name
	}
	return id
}
