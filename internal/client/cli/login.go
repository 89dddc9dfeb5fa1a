package cli

import (
	"context"
	"fmt"
)

// RunLogin входит в систему. Пустой email спрашивается интерактивно.
func (c *Cli) RunLogin(ctx context.Context, email string) error {
	c.io.Println("=== Login ===")
	c.io.Println()

	if email == "" {
		var err error
		email, err = c.io.ReadInput("Email: ")
		if err != nil {
			return fmt.Errorf("failed to read email: %w", err)
		}
	}

	password, err := c.readPassword()
	if err != nil {
		return err
	}

	c.io.Println("Authenticating...")
	user, err := c.backend.Login(ctx, email, password)
	if err != nil {
		return err
	}

	c.io.Println()
	c.io.Println("✓ Login successful!")
	c.io.Printf("User: %s (%s)\n", user.Name, user.Email)
	if user.Role != "" {
		c.io.Printf("Role: %s\n", user.Role)
	}
	return nil
}

// RunLogout завершает сессию
func (c *Cli) RunLogout(ctx context.Context) error {
	if err := c.backend.Logout(ctx); err != nil {
		return fmt.Errorf("logout failed: %w", err)
	}
	c.io.Println("✓ Logged out")
	return nil
}
