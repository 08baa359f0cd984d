// Package setup bulk-loads SQL scripts into the local SQLite database,
// either from an uploaded body or from an object store bucket.
package setup

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/koustreak/sqlgenius/internal/database"
	"github.com/koustreak/sqlgenius/internal/errs"
	"github.com/koustreak/sqlgenius/internal/filestore"
	"github.com/koustreak/sqlgenius/internal/logger"
	"github.com/koustreak/sqlgenius/internal/observability"
)

// MaxScriptBytes bounds scripts fetched from the object store.
const MaxScriptBytes = 10 << 20

// Script sources, used as metric labels.
const (
	SourceUpload = "upload"
	SourceObject = "object"
)

// Run executes script against db statement by statement. Only SQLite
// handles accept scripts. Statements before a failing one stay applied.
func Run(ctx context.Context, db database.DB, script, source string) error {
	if db.Kind() != database.KindSQLite {
		return errs.New(errs.ErrKindInvalidInput, "setup scripts are only supported for SQLite")
	}
	if strings.TrimSpace(script) == "" {
		return errs.New(errs.ErrKindInvalidInput, "setup script is empty")
	}

	err := db.ExecScript(ctx, script)
	observability.ObserveSetup(source, err == nil)
	if err != nil {
		logger.FromContext(ctx).WarnWith("setup script failed", map[string]any{
			"source": source,
			"error":  err.Error(),
		})
		return err
	}

	logger.FromContext(ctx).InfoWith("setup script applied", map[string]any{
		"source": source,
		"bytes":  len(script),
	})
	return nil
}

// Library reads setup scripts from an object store.
type Library struct {
	store filestore.Store
	cfg   *filestore.Config
}

func NewLibrary(store filestore.Store, cfg *filestore.Config) *Library {
	return &Library{store: store, cfg: cfg}
}

// List returns .sql objects and virtual directories under prefix.
func (l *Library) List(ctx context.Context, bucket, prefix string) ([]filestore.ObjectInfo, error) {
	bucket = l.cfg.Bucket(bucket)
	if bucket == "" {
		return nil, errs.New(errs.ErrKindInvalidInput, "bucket is required")
	}

	objs, err := l.store.ListObjects(ctx, bucket, filestore.ListOptions{Prefix: prefix})
	if err != nil {
		return nil, err
	}

	scripts := make([]filestore.ObjectInfo, 0, len(objs))
	for _, o := range objs {
		if o.IsDir || strings.EqualFold(path.Ext(o.Key), ".sql") {
			scripts = append(scripts, o)
		}
	}
	return scripts, nil
}

// Fetch downloads the script at key. Objects above MaxScriptBytes are
// rejected before any content is read.
func (l *Library) Fetch(ctx context.Context, bucket, key string) (string, error) {
	bucket = l.cfg.Bucket(bucket)
	if bucket == "" || strings.TrimSpace(key) == "" {
		return "", errs.New(errs.ErrKindInvalidInput, "bucket and key are required")
	}

	info, err := l.store.StatObject(ctx, bucket, key)
	if err != nil {
		return "", err
	}
	if info.Size > MaxScriptBytes {
		return "", errs.New(errs.ErrKindInvalidInput,
			fmt.Sprintf("script %s is %d bytes, limit is %d", key, info.Size, MaxScriptBytes))
	}

	obj, err := l.store.GetObject(ctx, bucket, key)
	if err != nil {
		return "", err
	}
	defer obj.Close()

	body, err := io.ReadAll(io.LimitReader(obj, MaxScriptBytes+1))
	if err != nil {
		return "", errs.Wrap(errs.ErrKindQueryFailed, "read script "+key, err)
	}
	if len(body) > MaxScriptBytes {
		return "", errs.New(errs.ErrKindInvalidInput, fmt.Sprintf("script %s exceeds %d bytes", key, MaxScriptBytes))
	}
	return string(body), nil
}
