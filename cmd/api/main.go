package main

import (
	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"jobboard/internal/config"
	"jobboard/internal/domain/model"
	"jobboard/internal/handler"
	"jobboard/internal/infra/db"
	infraRepo "jobboard/internal/infra/repository"
	"jobboard/internal/log"
	"jobboard/internal/security"
	"jobboard/internal/server"
	"jobboard/internal/usecase"
	"jobboard/internal/validator"
)

type uuidGenerator struct{}

func (g *uuidGenerator) NewID() string {
	return uuid.NewString()
}

func main() {
	// .envがなくても環境変数だけで動かせる
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := log.New(cfg.GoEnv)

	//DB接続
	gormDB, err := db.Connect(cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("db connect failed")
	}
	if err := gormDB.AutoMigrate(
		&model.User{},
		&model.Job{},
		&model.Application{},
	); err != nil {
		logger.Fatal().Err(err).Msg("migration failed")
	}

	//Repository（GORM実装）生成
	userRepo := infraRepo.NewUserGormRepository(gormDB)
	jobRepo := infraRepo.NewJobGormRepository(gormDB)
	appRepo := infraRepo.NewApplicationGormRepository(gormDB)
	txManager := infraRepo.NewTxManagerGorm(gormDB)

	//usecaseに渡す部品
	idGen := &uuidGenerator{}
	hasher := security.NewBcryptPasswordHasher(12)
	verifier := security.NewBcryptPasswordVerifier()

	//JWT issuer（access/refreshで別シークレット）
	issuer := security.NewJWTIssuer(
		cfg.JWTAccessSecret,
		cfg.JWTRefreshSecret,
		cfg.AccessTokenTTL,
		cfg.RefreshTokenTTL,
	)

	//Usecase生成
	authUC := usecase.NewAuthUsecase(
		userRepo,
		txManager,
		hasher,
		verifier,
		issuerAdapter{issuer},
		idGen,
		validator.NewAuthValidator(),
		logger,
	)
	jobUC := usecase.NewJobUsecase(jobRepo, appRepo, idGen)

	//Handler生成
	authH := handler.NewAuthHandler(authUC, issuer)
	jobH := handler.NewJobHandler(jobUC, issuer)

	//Server起動
	e := server.New(cfg, logger, authH, jobH)

	addr := ":" + cfg.Port
	logger.Info().Str("addr", addr).Msg("server starting")
	if err := e.Start(addr); err != nil {
		logger.Fatal().Err(err).Msg("server stopped")
	}
}

// securityのClaimsをusecaseのTokenClaimsへ詰め替える
type issuerAdapter struct {
	*security.JWTIssuer
}

func (a issuerAdapter) VerifyRefresh(raw string) (*usecase.TokenClaims, error) {
	claims, err := a.JWTIssuer.VerifyRefresh(raw)
	if err != nil {
		return nil, err
	}
	return &usecase.TokenClaims{
		UserID:   claims.UserID,
		Username: claims.Username,
		Role:     claims.Role,
	}, nil
}
