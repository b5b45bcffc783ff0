package cmd

import (
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

var replacer = strings.NewReplacer(".", "_", "-", "_")

type argType interface {
	string | bool | int | time.Duration
}

func ptr[T any](v T) *T {
	return &v
}

func envName[T argType](cfg boundEnvVar[T]) string {
	if cfg.Env != nil {
		return *cfg.Env
	}
	return strings.ToUpper(replacer.Replace(cfg.Name))
}

func bindEnvMap[T argType](cmd *cobra.Command, m map[*T]boundEnvVar[T]) {
	for ptr, cfg := range m {
		desc := fmt.Sprintf("[%s] %s", envName(cfg), cfg.Description)

		switch vt := any(ptr).(type) {
		case *string:
			if cfg.Short == nil {
				cmd.PersistentFlags().StringVar(vt, cfg.Name, *vt, desc)
			} else {
				cmd.PersistentFlags().StringVarP(vt, cfg.Name, *cfg.Short, *vt, desc)
			}
		case *bool:
			if cfg.Short == nil {
				cmd.PersistentFlags().BoolVar(vt, cfg.Name, *vt, desc)
			} else {
				cmd.PersistentFlags().BoolVarP(vt, cfg.Name, *cfg.Short, *vt, desc)
			}
		case *int:
			def := *vt
			if cfg.Short == nil {
				cmd.PersistentFlags().CountVar(vt, cfg.Name, desc)
			} else {
				cmd.PersistentFlags().CountVarP(vt, cfg.Name, *cfg.Short, desc)
			}
			_ = cmd.PersistentFlags().Lookup(cfg.Name).Value.Set(strconv.Itoa(def))
		case *time.Duration:
			if cfg.Short == nil {
				cmd.PersistentFlags().DurationVar(vt, cfg.Name, *vt, desc)
			} else {
				cmd.PersistentFlags().DurationVarP(vt, cfg.Name, *cfg.Short, *vt, desc)
			}
		default:
			log.Panicf("command-args parsing error: unhandled default case for type %T", vt)
		}

		_ = v.BindPFlag(cfg.Name, cmd.PersistentFlags().Lookup(cfg.Name))
		_ = v.BindEnv(cfg.Name, envName(cfg))

		if cfg.Hidden {
			_ = cmd.PersistentFlags().MarkHidden(cfg.Name)
		}
	}
}

// explicitValues captures the values explicitly set through flags or the environment. Flags
// write straight into the configuration, so they are captured before the configuration file is
// loaded and re-applied afterwards.
func explicitValues[T argType](m map[*T]boundEnvVar[T]) []func() {
	var apply []func()
	for ptr, cfg := range m {
		if !v.IsSet(cfg.Name) {
			continue
		}
		var value any
		switch any(ptr).(type) {
		case *string:
			value = v.GetString(cfg.Name)
		case *bool:
			value = v.GetBool(cfg.Name)
		case *int:
			value = v.GetInt(cfg.Name)
		case *time.Duration:
			value = v.GetDuration(cfg.Name)
		}
		typed := value.(T)
		apply = append(apply, func() { *ptr = typed })
	}
	return apply
}
