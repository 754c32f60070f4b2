package commands

import (
	"context"
	"log/slog"
	"strings"

	"atelier-backend/internal/pkg/errs"
	"atelier-backend/internal/usecase/shared"
)

var ErrEmptySettingKey = errs.New("setting key is required")

type SettingsCommands interface {
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

type settingsCommandsImpl struct {
	uow shared.UnitOfWork
	log *slog.Logger
}

func NewSettingsCommands(uow shared.UnitOfWork, log *slog.Logger) SettingsCommands {
	return &settingsCommandsImpl{uow: uow, log: log}
}

func (c *settingsCommandsImpl) Set(ctx context.Context, key, value string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return errs.Mark(ErrEmptySettingKey, ErrDomainValidation)
	}
	return c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		return tx.Settings().Set(ctx, key, value)
	})
}

func (c *settingsCommandsImpl) Delete(ctx context.Context, key string) error {
	return c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		return tx.Settings().Delete(ctx, key)
	})
}
