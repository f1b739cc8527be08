package main

import (
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Anthony-Yangg/reel-royale2-sub001/internal/client"
	"github.com/Anthony-Yangg/reel-royale2-sub001/internal/feed"
	"github.com/Anthony-Yangg/reel-royale2-sub001/internal/models"
	"github.com/Anthony-Yangg/reel-royale2-sub001/internal/mutation"
)

var (
	feedPages int

	postCaption  string
	postLocation string
	postTags     []string
	postPhotos   []string
)

var feedCmd = &cobra.Command{
	Use:   "feed",
	Short: "Show the home feed, newest first",
	RunE:  runFeed,
}

var showCmd = &cobra.Command{
	Use:   "show [post-id]",
	Short: "Show a post with its comments",
	Args:  cobra.ExactArgs(1),
	RunE:  runShow,
}

var postCmd = &cobra.Command{
	Use:   "post",
	Short: "Publish a post",
	Long: `Publishes a post with up to 10 photos. A post needs at least one
photo or a caption.

Example:
  reelctl post --photo pike.jpg --caption "PB pike #pike" --location "Lake Erie"`,
	RunE: runPost,
}

var likeCmd = &cobra.Command{
	Use:   "like [post-id]",
	Short: "Like a post, or remove your like",
	Args:  cobra.ExactArgs(1),
	RunE:  runLike,
}

var followCmd = &cobra.Command{
	Use:   "follow [user-id]",
	Short: "Follow a user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runFollow(cmd, args[0], false)
	},
}

var unfollowCmd = &cobra.Command{
	Use:   "unfollow [user-id]",
	Short: "Stop following a user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runFollow(cmd, args[0], true)
	},
}

var commentCmd = &cobra.Command{
	Use:   "comment [post-id] [text]",
	Short: "Comment on a post",
	Args:  cobra.MinimumNArgs(2),
	RunE:  runComment,
}

func init() {
	feedCmd.Flags().IntVar(&feedPages, "pages", 1, "number of pages to load")

	postCmd.Flags().StringVar(&postCaption, "caption", "", "post caption")
	postCmd.Flags().StringVar(&postLocation, "location", "", "location name")
	postCmd.Flags().StringSliceVar(&postTags, "tag", nil, "hashtag, repeatable")
	postCmd.Flags().StringSliceVar(&postPhotos, "photo", nil, "photo file, repeatable")
}

func runFeed(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	loader := feed.NewLoader(a.backend, cfg, logger)
	a.sess.OnSignOut(loader.Reset)
	state := loader.Dispatch(cmd.Context(), feed.LoadAction{})
	if state.Phase == feed.PhaseFailed {
		return state.Err
	}

	for page := 1; page < feedPages && state.HasMore && !state.Halted; page++ {
		last := state.Items[len(state.Items)-1].ID()
		state = loader.Dispatch(cmd.Context(), feed.LoadMoreAction{CurrentID: last})
	}

	out := cmd.OutOrStdout()
	if len(state.Items) == 0 {
		fmt.Fprintln(out, "Your feed is empty. Follow some anglers!")
		return nil
	}
	for i := range state.Items {
		printPost(out, &state.Items[i])
	}
	if state.Halted {
		fmt.Fprintln(out, "(could not load more posts)")
	}
	return nil
}

func runShow(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	th := feed.NewThread(a.backend, args[0], cfg, logger)
	if err := th.Load(cmd.Context()); err != nil {
		return err
	}
	printThread(cmd.OutOrStdout(), th.Snapshot())
	return nil
}

func runPost(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}

	draft := mutation.Draft{
		Caption:      postCaption,
		LocationName: postLocation,
		Hashtags:     postTags,
	}
	for _, path := range postPhotos {
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("failed to open photo: %w", err)
		}
		defer f.Close()
		draft.Media = append(draft.Media, client.MediaUpload{
			Filename:    filepath.Base(path),
			ContentType: mime.TypeByExtension(filepath.Ext(path)),
			Body:        f,
		})
	}

	p, err := a.dispatcher.Submit(cmd.Context(), draft)
	if err != nil {
		return noticeError(a.dispatcher, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Posted %s\n", p.ID.Hex())
	return nil
}

func runLike(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	th := feed.NewThread(a.backend, args[0], cfg, logger)
	if err := th.Load(cmd.Context()); err != nil {
		return err
	}
	a.dispatcher.Attach(th)

	if err := a.dispatcher.ToggleLike(cmd.Context(), *th.Snapshot().Post); err != nil {
		return noticeError(a.dispatcher, err)
	}
	p := th.Snapshot().Post
	verb := "Unliked"
	if p.IsLiked {
		verb = "Liked"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s post %s (%d likes)\n", verb, p.ID(), p.LikeCount)
	return nil
}

func runFollow(cmd *cobra.Command, userID string, following bool) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	if err := a.dispatcher.ToggleFollow(cmd.Context(), userID, following); err != nil {
		return noticeError(a.dispatcher, err)
	}
	if following {
		fmt.Fprintf(cmd.OutOrStdout(), "Unfollowed %s\n", userID)
	} else {
		fmt.Fprintf(cmd.OutOrStdout(), "Following %s\n", userID)
	}
	return nil
}

func runComment(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	c, err := a.dispatcher.AddComment(cmd.Context(), args[0], strings.Join(args[1:], " "))
	if err != nil {
		return noticeError(a.dispatcher, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Commented %s\n", c.ID)
	return nil
}

// noticeError prefers the user facing notice of a failed mutation.
func noticeError(d *mutation.Dispatcher, err error) error {
	n := d.Notice()
	if n == nil {
		return err
	}
	d.Dismiss()
	return fmt.Errorf("%s (%s)", n.Message, n.Kind)
}

func printPost(w io.Writer, p *models.PostDetails) {
	following := ""
	if p.IsFollowingAuthor {
		following = " · following"
	}
	liked := " "
	if p.IsLiked {
		liked = "♥"
	}
	fmt.Fprintf(w, "%s  @%s%s  %s\n", p.ID(), p.Author.Username, following, p.Post.CreatedAt.Format("2006-01-02 15:04"))
	if p.Post.Caption != "" {
		fmt.Fprintf(w, "  %s\n", p.Post.Caption)
	}
	if p.Post.LocationName != nil {
		fmt.Fprintf(w, "  📍 %s\n", *p.Post.LocationName)
	}
	if n := len(p.Post.MediaURLs); n > 0 {
		fmt.Fprintf(w, "  %d photo(s)\n", n)
	}
	fmt.Fprintf(w, "  %s %d likes  %d comments\n\n", liked, p.LikeCount, p.CommentCount)
}

func printThread(w io.Writer, s feed.ThreadState) {
	if s.Post == nil {
		return
	}
	printPost(w, s.Post)
	for _, c := range s.Comments {
		fmt.Fprintf(w, "  > %s: %s\n", c.AuthorID, c.Text)
	}
}
