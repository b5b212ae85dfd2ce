package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/AnyUserName/gridframe-cli/internal/caption"
	"github.com/AnyUserName/gridframe-cli/internal/errmsg"
	"github.com/AnyUserName/gridframe-cli/internal/source"
)

var (
	captionModel string
	captionStyle styleFlags
)

var captionCmd = &cobra.Command{
	Use:   "caption <file>",
	Short: "Suggest a caption, hashtags and credit lines for a photo",
	Long: `Renders the photo the same way compose would and sends the preview
to Gemini. Requires GEMINI_API_KEY in the environment or a .env file.
The suggestion is printed as YAML.`,
	Args: cobra.ExactArgs(1),
	RunE: runCaption,
}

func init() {
	captionCmd.Flags().StringVarP(&captionModel, "model", "m", "", "model name (default: config caption.model)")
	captionStyle.register(captionCmd)
	rootCmd.AddCommand(captionCmd)
}

func runCaption(cmd *cobra.Command, args []string) error {
	st, err := captionStyle.parse(cmd)
	if err != nil {
		return err
	}
	if captionModel != "" {
		cfg.Caption.Model = captionModel
	}
	if !cfg.HasCaptionConfig() {
		return errmsg.Wrap(errmsg.OpCaption, caption.ErrNoAPIKey)
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read %s: %w", args[0], err)
	}

	s := newStore()
	defer s.Cleanup()

	ids := s.Add([]source.File{{Name: args[0], Data: data}})
	if len(ids) == 0 {
		return fmt.Errorf("%s is not an image", args[0])
	}
	s.Wait()
	st.apply(s, ids[0])
	s.Wait()

	url, err := s.PreviewDataURL(ids[0])
	if err != nil {
		return fmt.Errorf("%s: %w", orNone(s.Err()), err)
	}

	cc := caption.Config{
		APIKey:      cfg.Caption.APIKey,
		Model:       cfg.Caption.Model,
		Temperature: cfg.Caption.Temperature,
	}
	logVerbose("requesting suggestions from %s", cc.Model)

	sug, err := caption.New(cc).SuggestDataURL(cmd.Context(), url)
	if err != nil {
		return errmsg.Wrap(errmsg.OpCaption, err)
	}
	return writeCaption(os.Stdout, sug)
}

// captionReport is the YAML printed by the caption command: the
// suggestion plus a ready-to-paste hashtag line.
type captionReport struct {
	caption.Suggestion `yaml:",inline"`

	HashtagLine string `yaml:"hashtag_line"`
}

func writeCaption(w io.Writer, sug *caption.Suggestion) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	defer enc.Close()
	return enc.Encode(captionReport{Suggestion: *sug, HashtagLine: sug.HashtagLine()})
}
