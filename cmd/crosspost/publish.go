package main

import (
	"github.com/spf13/cobra"
)

func newPublishCmd() *cobra.Command {
	var (
		postID int64
		userID int64
	)

	cmd := &cobra.Command{
		Use:   "publish",
		Short: "Publish one post to all of its targets immediately",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()
			return a.queue.PublishPost(cmd.Context(), postID, userID)
		},
	}
	cmd.Flags().Int64Var(&postID, "post-id", 0, "post to publish")
	cmd.Flags().Int64Var(&userID, "user-id", 0, "owner of the post")
	cmd.MarkFlagRequired("post-id")
	cmd.MarkFlagRequired("user-id")
	return cmd
}
