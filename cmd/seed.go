package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/haierkeys/fast-asset-delivery/internal/domain"
	"github.com/haierkeys/fast-asset-delivery/pkg/util"

	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

type seedFlags struct {
	creator string
	buyer   string
	file    string
	title   string
	price   int64
}

func init() {
	flags := new(seedFlags)

	var seedCmd = &cobra.Command{
		Use:   "seed",
		Short: "Create a demo creator, buyer, product and completed purchase",
		Long: `Create a demo creator, a buyer, one product with an uploaded file and a
completed purchase of it, then print bearer credentials for both users and a
download link for the buyer. Existing users with the same names are reused.`,
		Run: func(cmd *cobra.Command, args []string) {
			for _, name := range []string{flags.creator, flags.buyer} {
				if !util.IsValidUsername(name) {
					fmt.Printf("invalid username %q: letters, digits and underscore, 3-20 chars\n", name)
					os.Exit(1)
				}
			}
			if flags.creator == flags.buyer {
				fmt.Println("--creator and --buyer must differ")
				os.Exit(1)
			}

			env, err := openCommandEnv(cmd)
			if err != nil {
				fmt.Printf("Failed to start: %v\n", err)
				os.Exit(1)
			}
			defer env.close()

			ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
			defer cancel()

			if err := runSeed(ctx, env, flags); err != nil {
				fmt.Printf("Seed failed: %v\n", err)
				os.Exit(1)
			}
		},
	}

	rootCmd.AddCommand(seedCmd)
	fs := seedCmd.Flags()
	fs.StringP("config", "c", "", "config file path")
	fs.StringVar(&flags.creator, "creator", "demo_creator", "creator username")
	fs.StringVar(&flags.buyer, "buyer", "demo_buyer", "buyer username")
	fs.StringVar(&flags.file, "file", "", "file to sell, a generated text file when empty")
	fs.StringVar(&flags.title, "title", "Sample Pack", "product title")
	fs.Int64Var(&flags.price, "price", 999, "price in cents")
}

func runSeed(ctx context.Context, env *commandEnv, flags *seedFlags) error {
	a := env.app

	creator, err := seedUser(ctx, env, flags.creator, true)
	if err != nil {
		return err
	}
	buyer, err := seedUser(ctx, env, flags.buyer, false)
	if err != nil {
		return err
	}

	product, err := a.ProductRepo.Create(ctx, &domain.Product{
		CreatorID: creator.ID,
		Title:     flags.title,
		Price:     flags.price,
		IsActive:  true,
	})
	if err != nil {
		return fmt.Errorf("create product: %w", err)
	}

	name, size, content, err := seedContent(flags.file)
	if err != nil {
		return err
	}
	defer content.Close()

	uploaded, err := a.ProductService.UploadFile(ctx, creator.ID, product.ID, name, size, content)
	if err != nil {
		return fmt.Errorf("upload %s: %w", name, err)
	}

	if _, err := a.PurchaseRepo.Create(ctx, &domain.Purchase{
		UserID:          buyer.ID,
		ProductID:       product.ID,
		Amount:          product.Price,
		PaymentStatus:   domain.PaymentCompleted,
		PaymentIntentID: fmt.Sprintf("seed_%d_%d", buyer.ID, product.ID),
	}); err != nil {
		return fmt.Errorf("create purchase: %w", err)
	}

	creatorToken, err := a.UserService.IssueToken(ctx, creator.ID, "")
	if err != nil {
		return err
	}
	buyerToken, err := a.UserService.IssueToken(ctx, buyer.ID, "")
	if err != nil {
		return err
	}
	link, err := a.DeliveryService.IssueLink(ctx, buyer.ID, product.ID, 0)
	if err != nil {
		return err
	}

	fmt.Printf("creator   uid=%d  %s\n", creator.ID, creator.Username)
	fmt.Printf("buyer     uid=%d  %s\n", buyer.ID, buyer.Username)
	fmt.Printf("product   id=%d  %q  %s (%d bytes)\n", uploaded.ID, uploaded.Title, uploaded.FileName, uploaded.FileSize)
	fmt.Println()
	fmt.Printf("creator token: %s\n", creatorToken)
	fmt.Printf("buyer token:   %s\n", buyerToken)
	fmt.Println()
	fmt.Printf("download (until %s):\n", link.ExpiresAt.Format(time.RFC3339))
	fmt.Printf("  curl -OJ -H 'Authorization: Bearer %s' '%s'\n", buyerToken, link.URL)
	return nil
}

func seedUser(ctx context.Context, env *commandEnv, username string, creator bool) (*domain.User, error) {
	repo := env.app.UserRepo

	user, err := repo.GetByUsername(ctx, username)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	email := username + "@example.com"
	if !util.IsValidEmail(email) {
		return nil, fmt.Errorf("cannot derive an email for %q", username)
	}
	return repo.Create(ctx, &domain.User{
		Username:  username,
		Email:     email,
		IsCreator: creator,
		IsActive:  true,
	})
}

// seedContent opens the file to upload, or builds a small text file
func seedContent(path string) (string, int64, io.ReadCloser, error) {
	if path == "" {
		body := "Thanks for your purchase.\nGenerated " + time.Now().Format(time.RFC3339) + "\n"
		return "readme.txt", int64(len(body)), io.NopCloser(strings.NewReader(body)), nil
	}

	f, err := os.Open(path)
	if err != nil {
		return "", 0, nil, err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return "", 0, nil, err
	}
	return filepath.Base(path), info.Size(), f, nil
}
