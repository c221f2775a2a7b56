package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "fekernel",
	Short: "Sum-factorized finite element kernels for tensor-product elements",
	Long: `
fekernel exercises the sum-factorized interpolation and integration
kernels for high-order hexahedral and quadrilateral elements, on the
host and on OCCA devices.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
