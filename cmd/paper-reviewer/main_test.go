// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/paper-reviewer/pkg/types"
)

func TestSetDefaults_RoundTrip(t *testing.T) {
	v := viper.New()
	require.NoError(t, setDefaults(v, types.DefaultConfig()))

	assert.Equal(t, "openai/gpt-4o-mini", v.GetString("model.model"))
	assert.Equal(t, 30*time.Second, v.GetDuration("literature.timeout_per_source"))
	assert.True(t, v.GetBool("literature.semantic_scholar.enabled"))

	var cfg types.Config
	require.NoError(t, v.Unmarshal(&cfg))
	assert.Equal(t, types.DefaultConfig(), cfg)
}

func TestSetDefaults_EnvOverride(t *testing.T) {
	t.Setenv("PAPER_REVIEWER_LITERATURE_MAX_RESULTS", "9")
	t.Setenv("PAPER_REVIEWER_REVIEW_CONTINUE_ON_ERROR", "true")

	v := viper.New()
	require.NoError(t, setDefaults(v, types.DefaultConfig()))
	v.SetEnvPrefix("PAPER_REVIEWER")
	v.SetEnvKeyReplacer(replacer)
	v.AutomaticEnv()

	var cfg types.Config
	require.NoError(t, v.Unmarshal(&cfg))
	assert.Equal(t, 9, cfg.Literature.MaxResults)
	assert.True(t, cfg.Review.ContinueOnError)
}

func TestMask(t *testing.T) {
	assert.Equal(t, "", mask(""))
	assert.Equal(t, "****", mask("short"))
	assert.Equal(t, "sk-o****wxyz", mask("sk-or-abcdefwxyz"))
}
