package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	cfgpkg "gemreq/internal/config"
	"gemreq/internal/paths"
	"gemreq/internal/storage"
)

const (
	jsonContentType = "application/json"
	textContentType = "text/plain; charset=utf-8"
	cacheArchive    = "public, max-age=86400"
	cacheLatest     = "public, max-age=300"
)

type uploader interface {
	UploadFile(ctx context.Context, key, localPath, contentType, cacheControl string) error
	UploadBytes(ctx context.Context, key string, data []byte, contentType, cacheControl string) error
	CopyToLatest(ctx context.Context, srcKey, filename, contentType, cacheControl string) error
	KeyForDate(t time.Time, filename string) string
	Exists(ctx context.Context, key string) (bool, error)
	Bucket() string
	Prefix() string
}

var now = time.Now

var newUploader = func(ctx context.Context, bucket, prefix, region string) (uploader, error) {
	return storage.New(ctx, bucket, prefix, region)
}

// gemreq publish
func cmdPublish(args []string) error {
	var cf commonFlags
	var bucket, prefix, region, outDir stringFlag
	var overwrite boolFlag
	var includeRaw bool
	fs := flag.NewFlagSet("publish", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	addCommonFlags(fs, &cf)
	fs.Var(&bucket, "bucket", "S3 bucket name")
	fs.Var(&prefix, "prefix", "S3 key prefix")
	fs.Var(&region, "region", "AWS region (defaults from env)")
	fs.Var(&outDir, "out-dir", "Base directory of saved responses")
	fs.Var(&overwrite, "overwrite", "Replace an already published payload")
	fs.BoolVar(&includeRaw, "include-raw", false, "Also upload raw.txt")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}
	setupLogger(cf.logLevel)
	date, err := resolveDate(cf.date)
	if err != nil {
		return err
	}
	cfg, err := loadConfig(cf, cfgpkg.Overrides{
		S3Bucket:  bucket.ptr(),
		S3Prefix:  prefix.ptr(),
		Region:    region.ptr(),
		OutDir:    outDir.ptr(),
		Overwrite: overwrite.ptr(),
	})
	if err != nil {
		return err
	}
	if err := cfgpkg.ValidateForPublish(cfg); err != nil {
		return err
	}

	ctx := context.Background()
	up, err := newUploader(ctx, cfg.S3Bucket, cfg.S3Prefix, cfg.Region)
	if err != nil {
		return err
	}

	if !cfg.Overwrite {
		key := up.KeyForDate(date, paths.PayloadFilename)
		exists, err := up.Exists(ctx, key)
		if err != nil {
			return fmt.Errorf("checking %s: %w", key, err)
		}
		if exists {
			return fmt.Errorf("refusing to overwrite published object: %s (use --overwrite)", key)
		}
	}

	builder := paths.New(cfg.OutDir)
	if err := uploadAndCopy(ctx, up, date, paths.PayloadFilename, builder.Payload(date), jsonContentType, cacheArchive, cacheLatest); err != nil {
		return err
	}
	publishedAt := now().UTC()
	if err := publishMeta(ctx, up, date, builder.Meta(date), publishedAt); err != nil {
		return err
	}
	if includeRaw {
		if err := uploadAndCopy(ctx, up, date, paths.RawFilename, builder.Raw(date), textContentType, cacheArchive, cacheLatest); err != nil {
			return err
		}
	}

	slog.Info(
		"publish completed",
		"date", date.Format("2006-01-02"),
		"bucket", up.Bucket(),
		"prefix", up.Prefix(),
		"region", cfg.Region,
		"publishedAt", publishedAt.Format(time.RFC3339),
		"includeRaw", includeRaw,
	)
	return nil
}

func uploadAndCopy(ctx context.Context, up uploader, date time.Time, filename, localPath, contentType, cacheArchive, cacheLatest string) error {
	if _, err := os.Stat(localPath); err != nil {
		return fmt.Errorf("missing local file %s: %w", localPath, err)
	}
	key := up.KeyForDate(date, filename)
	if err := up.UploadFile(ctx, key, localPath, contentType, cacheArchive); err != nil {
		return err
	}
	if err := up.CopyToLatest(ctx, key, filename, contentType, cacheLatest); err != nil {
		return err
	}
	return nil
}

// publishMeta uploads meta.json with a publishedAt timestamp added. The local
// file is left untouched.
func publishMeta(ctx context.Context, up uploader, date time.Time, localPath string, publishedAt time.Time) error {
	b, err := os.ReadFile(localPath)
	if err != nil {
		return fmt.Errorf("missing local file %s: %w", localPath, err)
	}
	var meta map[string]any
	if err := json.Unmarshal(b, &meta); err != nil {
		return fmt.Errorf("parse %s: %w", localPath, err)
	}
	meta["publishedAt"] = publishedAt.Format(time.RFC3339)
	out, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return err
	}
	key := up.KeyForDate(date, paths.MetaFilename)
	if err := up.UploadBytes(ctx, key, out, jsonContentType, cacheArchive); err != nil {
		return err
	}
	return up.CopyToLatest(ctx, key, paths.MetaFilename, jsonContentType, cacheLatest)
}
