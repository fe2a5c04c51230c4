package cli

import (
	"fmt"

	"github.com/charmbracelet/huh"

	"github.com/hostbench/hostbench/internal/errors"
	"github.com/hostbench/hostbench/internal/store"
)

// deleteCommand removes one host's record, confirming first unless forced.
func deleteCommand(hostID string, force bool) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	st := store.New(cfg.Store.Path, Logger())

	if !force {
		ok, cerr := confirm(fmt.Sprintf("Delete the result for %q?", hostID))
		if cerr != nil {
			return cerr
		}
		if !ok {
			fmt.Println("Cancelled.")
			return nil
		}
	}

	existed, err := st.Delete(hostID)
	if err != nil {
		return err
	}
	if !existed {
		return errors.New(errors.ErrStore,
			fmt.Sprintf("No result stored for %q", hostID),
			"Run 'hostbench list' to see the stored host IDs.")
	}

	fmt.Printf("Deleted %q from %s\n", hostID, st.Path())
	return nil
}

// clearCommand removes every record, confirming first unless forced.
func clearCommand(force bool) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	st := store.New(cfg.Store.Path, Logger())

	results, err := st.List()
	if err != nil {
		return err
	}
	if len(results) == 0 {
		fmt.Println("Nothing to clear.")
		return nil
	}

	if !force {
		ok, cerr := confirm(fmt.Sprintf("Delete all %d stored results?", len(results)))
		if cerr != nil {
			return cerr
		}
		if !ok {
			fmt.Println("Cancelled.")
			return nil
		}
	}

	if err := st.Clear(); err != nil {
		return err
	}
	fmt.Printf("Cleared %s\n", st.Path())
	return nil
}

// confirm asks a yes/no question interactively.
func confirm(title string) (bool, error) {
	var ok bool
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(title).
				Value(&ok),
		),
	)
	if err := form.Run(); err != nil {
		return false, errors.WrapWithCode(err, errors.ErrConfig,
			"Couldn't read the confirmation",
			"Pass --force to skip the prompt.")
	}
	return ok, nil
}
