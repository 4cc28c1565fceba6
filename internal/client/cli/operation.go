package cli

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/iudanet/wastetrack/internal/client/operation"
	"github.com/iudanet/wastetrack/internal/models"
)

type subprocessView struct {
	models.Subprocess
	Tasks []models.Task
}

type processView struct {
	models.Process
	Subprocesses []subprocessView
}

type operationView struct {
	Processes []processView
}

func buildOperationView(op *models.Operation) operationView {
	var view operationView
	for _, p := range op.Processes {
		pv := processView{Process: p}
		for _, sp := range op.Subprocesses {
			if sp.ProcessID != p.ID {
				continue
			}
			sv := subprocessView{Subprocess: sp}
			for _, t := range op.Tasks {
				if t.SubprocessID == sp.ID {
					sv.Tasks = append(sv.Tasks, t)
				}
			}
			pv.Subprocesses = append(pv.Subprocesses, sv)
		}
		view.Processes = append(view.Processes, pv)
	}
	return view
}

func (c *Cli) operationCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "operation",
		Short: "Show the local operation snapshot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			op, ok := c.engine.Operation()
			if !ok {
				return errors.New("no operation downloaded: run 'wastetrack start'")
			}
			if err := operationTmpl.Execute(c.io, buildOperationView(op)); err != nil {
				return fmt.Errorf("failed to render operation: %w", err)
			}
			return nil
		},
	}
}

func (c *Cli) processCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "process",
		Short: "Manage collection runs",
	}

	var in operation.NewProcess
	create := &cobra.Command{
		Use:   "create",
		Short: "Create a collection run",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := c.ops.CreateProcess(cmd.Context(), in)
			if err != nil {
				c.hint(err)
				return err
			}
			c.io.Printf("✓ Process created: %s\n", p.ID)
			c.push(cmd.Context())
			return nil
		},
	}
	create.Flags().StringVar(&in.Title, "title", "", "run title")
	create.Flags().StringVar(&in.VehicleID, "vehicle", "", "vehicle id")
	_ = create.MarkFlagRequired("title")

	cmd.AddCommand(create)
	return cmd
}

func (c *Cli) transactionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "transaction",
		Aliases: []string{"tx"},
		Short:   "Manage transactions (pickups, transfers) inside a run",
	}

	var in operation.NewSubprocess
	create := &cobra.Command{
		Use:   "create",
		Short: "Open a transaction",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sp, err := c.ops.CreateSubprocess(cmd.Context(), in)
			if err != nil {
				c.hint(err)
				return err
			}
			c.io.Printf("✓ Transaction created: %s\n", sp.ID)
			c.push(cmd.Context())
			return nil
		},
	}
	create.Flags().StringVar(&in.ProcessID, "process", "", "process id")
	create.Flags().StringVar(&in.PointID, "point", "", "collection point id")
	create.Flags().StringVar(&in.Kind, "kind", "pickup", "transaction kind")
	create.Flags().StringVar(&in.Notes, "notes", "", "free text notes")
	_ = create.MarkFlagRequired("process")
	_ = create.MarkFlagRequired("point")

	cmd.AddCommand(
		create,
		c.statusChangeCommand("approve", models.StatusApproved),
		c.statusChangeCommand("reject", models.StatusRejected),
	)
	return cmd
}

func (c *Cli) statusChangeCommand(use string, status models.StatusID) *cobra.Command {
	return &cobra.Command{
		Use:   use + " ID",
		Short: "Mark a transaction as " + string(status),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := c.ops.SetSubprocessStatus(cmd.Context(), args[0], status); err != nil {
				c.hint(err)
				return err
			}
			c.io.Printf("✓ Transaction %s: %s\n", args[0], status)
			c.push(cmd.Context())
			return nil
		},
	}
}

func (c *Cli) taskCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "task",
		Short: "Manage material lines of a transaction",
	}

	var in operation.NewTask
	add := &cobra.Command{
		Use:   "add",
		Short: "Add a material line",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			task, err := c.ops.AddTask(cmd.Context(), in)
			if err != nil {
				c.hint(err)
				return err
			}
			c.io.Printf("✓ Task added: %s\n", task.ID)
			c.push(cmd.Context())
			return nil
		},
	}
	add.Flags().StringVar(&in.SubprocessID, "transaction", "", "transaction id")
	add.Flags().StringVar(&in.MaterialID, "material", "", "material id")
	add.Flags().StringVar(&in.PackageID, "package", "", "package id")
	add.Flags().StringVar(&in.Unit, "unit", "", "unit (defaults to the material unit)")
	add.Flags().Float64Var(&in.Quantity, "qty", 0, "quantity")
	_ = add.MarkFlagRequired("transaction")
	_ = add.MarkFlagRequired("material")
	_ = add.MarkFlagRequired("qty")

	setQty := &cobra.Command{
		Use:   "set-qty ID QTY",
		Short: "Change the quantity of a material line",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			qty, err := strconv.ParseFloat(args[1], 64)
			if err != nil {
				return fmt.Errorf("invalid quantity %q: %w", args[1], err)
			}
			if _, err := c.ops.UpdateTaskQuantity(cmd.Context(), args[0], qty); err != nil {
				c.hint(err)
				return err
			}
			c.io.Printf("✓ Task %s quantity: %g\n", args[0], qty)
			c.push(cmd.Context())
			return nil
		},
	}

	del := &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a material line",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.ops.DeleteTask(cmd.Context(), args[0]); err != nil {
				c.hint(err)
				return err
			}
			c.io.Printf("✓ Task %s deleted\n", args[0])
			c.push(cmd.Context())
			return nil
		},
	}

	cmd.AddCommand(add, setQty, del)
	return cmd
}
