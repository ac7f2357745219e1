package cmd

import (
	"fmt"
	"io"

	"github.com/jsphweid/utsu/constants"
	"github.com/jsphweid/utsu/file"
	"github.com/jsphweid/utsu/util"
	"github.com/jsphweid/utsu/voicebank"
	"github.com/spf13/cobra"
)

var inspectAll bool

func init() {
	inspectCmd.Flags().BoolVar(&inspectAll, "all", false, "list every voicebank under VOICE_ROOT instead")
	rootCmd.AddCommand(inspectCmd)
}

var inspectCmd = &cobra.Command{
	Use:   "inspect [voicebank dir]",
	Short: "Inspects a voicebank",
	Long:  `Prints a voicebank's details, aliases and pitch map. Without a directory the default voicebank is read.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		if inspectAll {
			return listVoicebanks(out, constants.GetVoiceRoot())
		}

		r := newVoicebankReader()
		location := r.DefaultPath()
		if len(args) == 1 {
			location = args[0]
		}
		vb, err := r.LoadVoicebank(location)
		if err != nil {
			return err
		}
		inspect(out, vb)
		return nil
	},
}

func listVoicebanks(out io.Writer, root string) error {
	dirs, err := file.FindVoicebanks(root, 0)
	if err != nil {
		return err
	}
	numbered := file.CreateVoicebankNumMap(dirs)
	for _, i := range util.SortedKeys(numbered) {
		fmt.Fprintf(out, "%d\t%s\n", i, numbered[i])
	}
	return nil
}

func inspect(out io.Writer, vb *voicebank.Voicebank) {
	fmt.Fprintf(out, "name: %v\n", vb.Name())
	fmt.Fprintf(out, "author: %v\n", vb.Author())
	fmt.Fprintf(out, "location: %v\n", vb.Location())
	if image := vb.ImagePath(); image != "" {
		fmt.Fprintf(out, "image: %v\n", image)
	}
	fmt.Fprintf(out, "lyrics: %v\n", vb.NumLyrics())
	for _, category := range vb.Categories() {
		name := category
		if name == "" {
			name = "(root)"
		}
		fmt.Fprintf(out, "\n[%s]\n", name)
		for _, data := range vb.LyricData(category) {
			frq := ""
			if data.HasFrq {
				frq = " frq"
			}
			fmt.Fprintf(out, "%s\t%s\t%v%s\n", data.Lyric, data.FileName, data.Values, frq)
		}
	}

	fmt.Fprintf(out, "\n[pitch map]\n")
	for _, data := range vb.PitchData() {
		if data.Prefix == "" && data.Suffix == "" {
			continue
		}
		fmt.Fprintf(out, "%s\t%s\t%s\n", data.Pitch, data.Prefix, data.Suffix)
	}
}
