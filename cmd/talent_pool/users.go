package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/jonathan/talent-pool/internal/config"
	"github.com/jonathan/talent-pool/internal/server"
	"github.com/jonathan/talent-pool/internal/types"
	"github.com/spf13/cobra"
)

var createUserCmd = &cobra.Command{
	Use:   "create-user",
	Short: "Create a user account",
	Long:  "Creates a user with a bcrypt password hash. Use it to bootstrap recruiter and admin accounts.",
	RunE:  runCreateUser,
}

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Issue a session token",
	Long:  "Signs a session token with JWT_SECRET for the given user and role. Intended for local testing and service accounts.",
	RunE:  runToken,
}

var (
	userName     string
	userEmail    string
	userRole     string
	userPassword string
	tokenUserID  string
)

func init() {
	createUserCmd.Flags().StringVar(&userName, "name", "", "Display name (required)")
	createUserCmd.Flags().StringVar(&userEmail, "email", "", "Email address (required)")
	createUserCmd.Flags().StringVar(&userRole, "role", string(types.RoleRecruiter), "Role: job_seeker, recruiter or admin")
	createUserCmd.Flags().StringVar(&userPassword, "password", "", "Password (required)")
	for _, name := range []string{"name", "email", "password"} {
		if err := createUserCmd.MarkFlagRequired(name); err != nil {
			panic(fmt.Sprintf("failed to mark %s flag as required: %v", name, err))
		}
	}

	tokenCmd.Flags().StringVar(&tokenUserID, "user-id", "", "User ID (required)")
	tokenCmd.Flags().StringVar(&userEmail, "email", "", "Email claim")
	tokenCmd.Flags().StringVar(&userName, "name", "", "Name claim")
	tokenCmd.Flags().StringVar(&userRole, "role", string(types.RoleRecruiter), "Role: job_seeker, recruiter or admin")
	if err := tokenCmd.MarkFlagRequired("user-id"); err != nil {
		panic(fmt.Sprintf("failed to mark user-id flag as required: %v", err))
	}

	rootCmd.AddCommand(createUserCmd, tokenCmd)
}

func parseRole(s string) (types.Role, error) {
	role := types.Role(s)
	if !role.Valid() {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return role, nil
}

func runCreateUser(cmd *cobra.Command, _ []string) error {
	role, err := parseRole(userRole)
	if err != nil {
		return err
	}

	passwords, err := config.NewPasswordConfig()
	if err != nil {
		return err
	}
	hash, err := passwords.HashPassword(userPassword)
	if err != nil {
		return err
	}

	cfg, err := loadServiceConfig()
	if err != nil {
		return err
	}

	ctx, cancel := commandContext(cmd.Context())
	defer cancel()

	st, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	id, err := st.CreateUser(ctx, userName, userEmail, hash, role)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), id)
	return nil
}

func runToken(cmd *cobra.Command, _ []string) error {
	id, err := uuid.Parse(tokenUserID)
	if err != nil {
		return fmt.Errorf("invalid user ID %q: %w", tokenUserID, err)
	}
	role, err := parseRole(userRole)
	if err != nil {
		return err
	}

	jwtConfig, err := config.NewJWTConfig()
	if err != nil {
		return err
	}
	token, err := server.NewJWTService(jwtConfig).GenerateToken(types.Session{
		UserID: id,
		Email:  userEmail,
		Name:   userName,
		Role:   role,
	})
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), token)
	return nil
}
