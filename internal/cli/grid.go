package cli

import (
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mcoot/hiddengrid/internal/fhe"
	"github.com/mcoot/hiddengrid/internal/model"
)

func newGridCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "grid",
		Short: "Board commands",
	}

	cmd.AddCommand(newGridJoinCmd())
	cmd.AddCommand(newGridMoveCmd())
	cmd.AddCommand(newGridPositionCmd())
	cmd.AddCommand(newGridJoinedCmd())
	cmd.AddCommand(newGridLimitsCmd())
	cmd.AddCommand(newGridRevealCmd())

	return cmd
}

func newGridJoinCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "join",
		Short: "Join the board at a random hidden position",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result Position
			if err := client.Post("/api/v1/grid/join", nil, &result); err != nil {
				return err
			}
			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}
}

func newGridMoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "move <up|down|left|right|0-255>",
		Short: "Move one square, encrypting the direction locally",
		Long: `Encrypt a direction to the network key, have the relayer verify it and
submit the move. Raw codes are reduced modulo 4 on the board:
0=up, 1=down, 2=left, 3=right.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			code, err := parseDirection(args[0])
			if err != nil {
				return err
			}

			input, err := sealInput(code)
			if err != nil {
				return err
			}

			var result Position
			if err := client.Post("/api/v1/grid/move", input, &result); err != nil {
				return err
			}
			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}
}

func newGridPositionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "position [player-id]",
		Short: "Show a player's encrypted position (default: you)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := playerArg(args)
			if err != nil {
				return err
			}
			var result Position
			if err := client.Get("/api/v1/grid/players/"+id+"/position", &result); err != nil {
				return err
			}
			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}
}

func newGridJoinedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "joined [player-id]",
		Short: "Check whether a player has joined (default: you)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := playerArg(args)
			if err != nil {
				return err
			}
			var result Joined
			if err := client.Get("/api/v1/grid/players/"+id+"/joined", &result); err != nil {
				return err
			}
			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}
}

func newGridLimitsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "limits",
		Short: "Show the board bounds",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result Limits
			if err := client.Get("/api/v1/grid/limits", &result); err != nil {
				return err
			}
			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}
}

func newGridRevealCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reveal",
		Short: "Decrypt your own position locally",
		Long: `Generate a one-off keypair, ask the relayer to re-encrypt your
coordinates to it and open them on this machine.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			me, err := currentPlayer()
			if err != nil {
				return err
			}
			var pos Position
			if err := client.Get("/api/v1/grid/players/"+me+"/position", &pos); err != nil {
				return err
			}

			pub, priv, err := fhe.GenerateUserKeypair()
			if err != nil {
				return err
			}
			req := map[string]any{
				"handles":    []string{pos.X, pos.Y},
				"public_key": hex.EncodeToString(pub[:]),
			}
			var result struct {
				Values []struct {
					Handle string `json:"handle"`
					Sealed string `json:"sealed"`
				} `json:"values"`
			}
			if err := client.Post("/api/v1/relayer/decrypt", req, &result); err != nil {
				return err
			}
			if len(result.Values) != 2 {
				return fmt.Errorf("relayer returned %d values, want 2", len(result.Values))
			}

			var coords [2]uint8
			for i, v := range result.Values {
				sealed, err := base64.StdEncoding.DecodeString(v.Sealed)
				if err != nil {
					return fmt.Errorf("decode sealed value: %w", err)
				}
				if coords[i], err = fhe.OpenUserValue(sealed, pub, priv); err != nil {
					return err
				}
			}

			var limits Limits
			if err := client.Get("/api/v1/grid/limits", &limits); err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(Revealed{
				X: coords[0], Y: coords[1], Min: limits.Min, Max: limits.Max,
			})
			return nil
		},
	}
}

// parseDirection accepts a direction name or a raw byte code
func parseDirection(arg string) (uint8, error) {
	if d, ok := model.ParseDirection(strings.ToLower(arg)); ok {
		return uint8(d), nil
	}
	n, err := strconv.ParseUint(arg, 10, 8)
	if err != nil {
		return 0, fmt.Errorf("direction %q: want up, down, left, right or 0-255", arg)
	}
	return uint8(n), nil
}

// sealInput encrypts v to the network key and returns the verified
// handle and proof as the move endpoint expects them
func sealInput(v uint8) (map[string]string, error) {
	var keys struct {
		PublicKey string `json:"public_key"`
	}
	if err := client.Get("/api/v1/relayer/keys", &keys); err != nil {
		return nil, err
	}
	raw, err := hex.DecodeString(keys.PublicKey)
	if err != nil || len(raw) != 32 {
		return nil, fmt.Errorf("relayer returned a malformed public key")
	}
	var pub [32]byte
	copy(pub[:], raw)

	sealed, err := fhe.SealInput(pub, fhe.TypeUint8, v)
	if err != nil {
		return nil, err
	}

	var verified map[string]string
	req := map[string]string{"ciphertext": base64.StdEncoding.EncodeToString(sealed)}
	if err := client.Post("/api/v1/relayer/inputs", req, &verified); err != nil {
		return nil, err
	}
	return verified, nil
}

// playerArg returns the explicit player ID or the logged-in player's
func playerArg(args []string) (string, error) {
	if len(args) == 1 {
		return args[0], nil
	}
	return currentPlayer()
}

func currentPlayer() (string, error) {
	if client.Token() == "" {
		return "", fmt.Errorf("not logged in: run 'gridctl player guest' first or pass a player ID")
	}
	var me Player
	if err := client.Get("/api/v1/players/me", &me); err != nil {
		return "", err
	}
	return me.ID, nil
}
