package main

import (
	"fmt"
	"math/big"
	"strconv"

	"hashira/internal/radix"

	"github.com/spf13/cobra"
)

var decodeCmd = &cobra.Command{
	Use:   "decode <digits> <base>",
	Short: "Print the decimal value of a digit string",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		base, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("base: %w", err)
		}

		n, err := radix.Decode(args[0], base)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), n.String())
		return nil
	},
}

var encodeCmd = &cobra.Command{
	Use:   "encode <decimal> <base>",
	Short: "Print a non-negative decimal number in another base",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		n, ok := big.NewInt(0).SetString(args[0], 10)
		if !ok {
			return fmt.Errorf("value must be a whole number, got %q", args[0])
		}

		base, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("base: %w", err)
		}

		s, err := radix.Encode(n, base)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), s)
		return nil
	},
}
