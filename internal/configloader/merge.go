package configloader

import "github.com/yaklabco/lineml/pkg/config"

// merge returns base with every field set in over applied on top. Zero
// scalars, nil pointers and nil slices in over are unset. A set slice
// replaces the base slice. Neither input is modified.
func merge(base, over *config.Config) *config.Config {
	switch {
	case base == nil:
		return over
	case over == nil:
		return base
	}

	out := *base
	setScalar(&out.Jobs, over.Jobs)
	setScalar(&out.MaxLineSize, over.MaxLineSize)
	setScalar(&out.Output.Format, over.Output.Format)
	setScalar(&out.Output.Color, over.Output.Color)
	setScalar(&out.Render.Backups.Mode, over.Render.Backups.Mode)

	// Flag-only switches; they can be turned on but never back off.
	out.Strict = out.Strict || over.Strict
	out.NoBackups = out.NoBackups || over.NoBackups

	setBool(&out.FollowSymlinks, over.FollowSymlinks)
	setBool(&out.Render.Backups.Enabled, over.Render.Backups.Enabled)

	setSlice(&out.Extensions, over.Extensions)
	setSlice(&out.Include, over.Include)
	setSlice(&out.Exclude, over.Exclude)

	return &out
}

func setScalar[T comparable](dst *T, v T) {
	var zero T
	if v != zero {
		*dst = v
	}
}

func setBool(dst **bool, v *bool) {
	if v != nil {
		*dst = config.Bool(*v)
	}
}

func setSlice(dst *[]string, v []string) {
	if v != nil {
		*dst = v
	}
}

// MergeAll merges configs left to right; later configs win.
func MergeAll(configs ...*config.Config) *config.Config {
	var out *config.Config
	for i, cfg := range configs {
		if i == 0 {
			out = cfg
			continue
		}
		out = merge(out, cfg)
	}
	return out
}
