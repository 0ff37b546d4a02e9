package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/tamu-thinktank/website-sub002/internal/dto"
	"github.com/tamu-thinktank/website-sub002/internal/model"
	"github.com/tamu-thinktank/website-sub002/internal/repository"
	pkgerrors "github.com/tamu-thinktank/website-sub002/pkg/errors"
	"github.com/tamu-thinktank/website-sub002/pkg/identity"
	"github.com/tamu-thinktank/website-sub002/pkg/jwt"
)

var (
	ErrInvalidIDToken        = errors.New("身份令牌无效或已过期")
	ErrEmailNotVerified      = errors.New("邮箱尚未验证")
	ErrOfficerNotProvisioned = errors.New("账号未被录入，请联系管理员")
	ErrOfficerInactive       = errors.New("账号已停用")
	ErrAccountAlreadyLinked  = errors.New("该邮箱已绑定其他登录账号")
)

// AuthService 认证业务接口
type AuthService interface {
	// CreateSession 用 Firebase ID Token 换取本系统 Access Token
	CreateSession(ctx context.Context, req *dto.SessionRequest) (*dto.TokenResponse, error)
	Me(ctx context.Context, officerID string) (*dto.OfficerResponse, error)
	// Logout 将 Token 的 JTI 加入黑名单直至其过期
	Logout(ctx context.Context, jti string, expiresAt time.Time) error
}

type authService struct {
	repo      *repository.Repository
	jwtMgr    *jwt.Manager
	verifier  identity.Verifier
	blacklist TokenBlacklist
	logger    *zap.Logger
}

// NewAuthService 创建 AuthService 实例
func NewAuthService(
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	verifier identity.Verifier,
	blacklist TokenBlacklist,
	logger *zap.Logger,
) AuthService {
	return &authService{
		repo:      repo,
		jwtMgr:    jwtMgr,
		verifier:  verifier,
		blacklist: blacklist,
		logger:    logger,
	}
}

func (s *authService) CreateSession(ctx context.Context, req *dto.SessionRequest) (*dto.TokenResponse, error) {
	if s.verifier == nil {
		return nil, pkgerrors.ErrProviderUnavailable
	}

	// 1. 校验 Firebase ID Token
	ident, err := s.verifier.Verify(ctx, req.IDToken)
	if err != nil {
		if errors.Is(err, identity.ErrInvalidIDToken) {
			return nil, ErrInvalidIDToken
		}
		s.logger.Error("校验 ID Token 失败", zap.Error(err))
		return nil, err
	}

	// 2. 已绑定 UID 的干事直接命中，否则按邮箱匹配预录入账号
	officer, err := s.repo.Officer.GetByFirebaseUID(ctx, ident.UID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("按 UID 查询干事失败", zap.Error(err))
		return nil, err
	}
	if officer == nil {
		officer, err = s.bindByEmail(ctx, ident)
		if err != nil {
			return nil, err
		}
	}

	if !officer.IsActive {
		return nil, ErrOfficerInactive
	}

	// 3. 签发 Access Token
	teamID := ""
	if officer.TeamID != nil {
		teamID = *officer.TeamID
	}
	accessToken, err := s.jwtMgr.GenerateAccessToken(officer.OfficerID, officer.Role, teamID)
	if err != nil {
		s.logger.Error("生成 AccessToken 失败", zap.Error(err))
		return nil, err
	}

	s.logger.Info("干事登录", zap.String("officer_id", officer.OfficerID))

	return &dto.TokenResponse{
		AccessToken: accessToken,
		ExpiresIn:   int(s.jwtMgr.AccessTokenTTL().Seconds()),
		Officer:     *toOfficerResponse(officer),
	}, nil
}

// bindByEmail 首次登录：按已验证邮箱找到预录入的干事并绑定 UID
func (s *authService) bindByEmail(ctx context.Context, ident *identity.Identity) (*model.Officer, error) {
	if ident.Email == "" {
		return nil, ErrOfficerNotProvisioned
	}
	if !ident.EmailVerified {
		return nil, ErrEmailNotVerified
	}

	officer, err := s.repo.Officer.GetByEmail(ctx, strings.ToLower(ident.Email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOfficerNotProvisioned
		}
		s.logger.Error("按邮箱查询干事失败", zap.Error(err))
		return nil, err
	}
	if officer.FirebaseUID != nil && *officer.FirebaseUID != "" && *officer.FirebaseUID != ident.UID {
		return nil, ErrAccountAlreadyLinked
	}

	if officer.FirebaseUID == nil || *officer.FirebaseUID == "" {
		if err := s.repo.Officer.BindFirebaseUID(ctx, officer.OfficerID, ident.UID); err != nil {
			s.logger.Error("绑定 Firebase UID 失败", zap.String("officer_id", officer.OfficerID), zap.Error(err))
			return nil, err
		}
		officer.FirebaseUID = strPtr(ident.UID)
	}
	return officer, nil
}

func (s *authService) Me(ctx context.Context, officerID string) (*dto.OfficerResponse, error) {
	officer, err := s.repo.Officer.GetByID(ctx, officerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOfficerNotFound
		}
		s.logger.Error("查询干事失败", zap.String("id", officerID), zap.Error(err))
		return nil, err
	}
	return toOfficerResponse(officer), nil
}

func (s *authService) Logout(ctx context.Context, jti string, expiresAt time.Time) error {
	if s.blacklist == nil || jti == "" {
		return nil
	}
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil
	}
	if err := s.blacklist.BlacklistToken(ctx, jti, ttl); err != nil {
		s.logger.Error("Token 加入黑名单失败", zap.Error(err))
		return err
	}
	return nil
}
