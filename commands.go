package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ByLCY/folio/fonts"
	"github.com/ByLCY/folio/storage"
)

func newListCmd() *cobra.Command {
	var root string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "列出存储中的模板、版式与简历",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := storage.Open(root)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, kind := range storage.Kinds {
				names, err := store.List(kind)
				if err != nil {
					return fmt.Errorf("列出 %s 失败: %w", kind, err)
				}
				fmt.Fprintf(out, "%s:\n", kind)
				for _, n := range names {
					fmt.Fprintf(out, "  %s\n", n)
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&root, "store", ".", "存储目录")
	return cmd
}

// newFontsCmd 加载全部布局模板引用的字体，报告每个字体的来源。
func newFontsCmd() *cobra.Command {
	var root, dir string
	cmd := &cobra.Command{
		Use:   "fonts",
		Short: "检查布局模板引用的字体能否加载",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := loggerFromContext(cmd.Context())
			store, err := storage.Open(root)
			if err != nil {
				return err
			}
			store.Logger = logger
			schemas, err := store.LoadLayoutSchemas()
			if err != nil {
				return err
			}
			wanted := fonts.Collect(schemas)
			dict, err := fonts.Load(wanted, fonts.Options{Dir: dir, Logger: logger})
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, f := range wanted {
				if !dict.Has(f) {
					continue
				}
				fmt.Fprintf(out, "%-24s %-9s %s\n", f.FullName(), dict.Source(f), dict.Path(f))
			}
			for _, name := range dict.Missing() {
				fmt.Fprintf(out, "%-24s %-9s %s\n", name, "missing", "使用默认字体")
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&root, "store", ".", "存储目录")
	cmd.Flags().StringVar(&dir, "font-dir", "", "本地字体目录")
	return cmd
}

func newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init <dir>",
		Short: "创建空的存储目录结构",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := storage.Init(args[0]); err != nil {
				return err
			}
			loggerFromContext(cmd.Context()).Info("已创建存储目录", "dir", args[0])
			return nil
		},
	}
}
