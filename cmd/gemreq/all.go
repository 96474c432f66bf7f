package main

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
)

// gemreq all: request --save followed by publish.
func cmdAll(args []string) error {
	var cf commonFlags
	var prompt, promptFile, file stringFlag
	var mimeType, model, provider stringFlag
	var overwrite boolFlag
	var bucket, prefix, region stringFlag

	fs := flag.NewFlagSet("all", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	addCommonFlags(fs, &cf)
	fs.Var(&prompt, "prompt", "Prompt text")
	fs.Var(&promptFile, "prompt-file", "Read the prompt from a file (- for stdin)")
	fs.Var(&file, "file", "Local file to attach after the prompt")
	fs.Var(&mimeType, "mime-type", "MIME type of the attached file")
	fs.Var(&model, "model", "Model identifier")
	fs.Var(&provider, "provider", "Provider: gemini or openai")
	fs.Var(&overwrite, "overwrite", "Allow overwriting saved and published outputs")
	fs.Var(&bucket, "bucket", "S3 bucket name")
	fs.Var(&prefix, "prefix", "S3 key prefix")
	fs.Var(&region, "region", "AWS region (defaults from env)")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}

	setupLogger(cf.logLevel)
	slog.Info("running all steps")

	shared := []string{"--config", cf.config, "--env-file", cf.envFile, "--log-level", cf.logLevel}
	if cf.date != "" {
		shared = append(shared, "--date", cf.date)
	}
	if overwrite.set {
		shared = append(shared, "--overwrite="+fmt.Sprint(overwrite.v))
	}

	requestArgs := append([]string{"--save"}, shared...)
	for name, f := range map[string]*stringFlag{
		"prompt": &prompt, "prompt-file": &promptFile, "file": &file,
		"mime-type": &mimeType, "model": &model, "provider": &provider,
	} {
		if f.set {
			requestArgs = append(requestArgs, "--"+name, f.v)
		}
	}
	if err := cmdRequest(requestArgs); err != nil {
		return err
	}

	publishArgs := append([]string{}, shared...)
	if bucket.set {
		publishArgs = append(publishArgs, "--bucket", bucket.v)
	}
	if prefix.set {
		publishArgs = append(publishArgs, "--prefix", prefix.v)
	}
	if region.set {
		publishArgs = append(publishArgs, "--region", region.v)
	}
	return cmdPublish(publishArgs)
}
