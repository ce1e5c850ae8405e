package cli

import (
	"github.com/spf13/cobra"

	"github.com/morozRed/sigtrack/internal/fileutil"
	"github.com/morozRed/sigtrack/internal/signature"
)

type CompareOutput struct {
	Left       string  `json:"left"`
	Right      string  `json:"right"`
	Policy     string  `json:"policy"`
	Similarity float64 `json:"similarity"`
	Same       bool    `json:"same"`
}

func RunCompare(cmd *cobra.Command, args []string) error {
	env, err := loadEnvironment(cmd)
	if err != nil {
		return err
	}
	asJSON, err := OptionalBoolFlag(cmd, "json", false)
	if err != nil {
		return err
	}
	policy, err := comparePolicy(cmd, env.policy)
	if err != nil {
		return err
	}

	left, err := signature.Parse(args[0], policy)
	if err != nil {
		return err
	}
	right, err := signature.Parse(args[1], policy)
	if err != nil {
		return err
	}

	out := CompareOutput{
		Left:       left.String(),
		Right:      right.String(),
		Policy:     policy.String(),
		Similarity: signature.Similarity(left, right),
		Same:       left.AreSame(right),
	}
	if asJSON {
		return fileutil.PrintJSON(cmd.OutOrStdout(), out)
	}
	return PrintCompare(cmd.OutOrStdout(), out)
}

// comparePolicy applies --policy and --threshold on top of the configured
// policy.
func comparePolicy(cmd *cobra.Command, base signature.Policy) (signature.Policy, error) {
	policy := base
	modeName, err := OptionalStringFlag(cmd, "policy")
	if err != nil {
		return policy, err
	}
	if modeName != "" {
		mode, err := signature.ParseMode(modeName)
		if err != nil {
			return policy, err
		}
		policy.Mode = mode
		if mode == signature.ModeExact {
			policy.Threshold = 1
		}
	}
	if flag := cmd.Flags().Lookup("threshold"); flag != nil && flag.Changed {
		threshold, err := cmd.Flags().GetFloat64("threshold")
		if err != nil {
			return policy, err
		}
		policy.Threshold = threshold
	}
	return policy, policy.Validate()
}
