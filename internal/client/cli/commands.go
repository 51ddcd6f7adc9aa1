package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/sultan0alshami/wathiq-sub001/internal/client/models"
	"github.com/sultan0alshami/wathiq-sub001/internal/client/repositories/metadata"
	"github.com/sultan0alshami/wathiq-sub001/internal/client/services"
	"github.com/sultan0alshami/wathiq-sub001/internal/common"
)

var errUsage = errors.New("wrong arguments, see 'help'")

// Add reads a trip report from a JSON file plus optional photo files and
// submits it. The current mode decides between direct send and queueing.
func (a *App) Add(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errUsage
	}

	raw, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read trip file: %w", err)
	}
	var input models.TripReportInput
	if err := json.Unmarshal(raw, &input); err != nil {
		return fmt.Errorf("parse trip file: %w", err)
	}

	attachments := make([]models.TripPhotoAttachment, 0, len(args)-1)
	for _, p := range args[1:] {
		att, err := models.AttachmentFromFile(p)
		if err != nil {
			return err
		}
		attachments = append(attachments, att)
	}

	res, err := a.tripService.Submit(ctx, input, attachments, a.Mode() == ModeOnline)
	if err != nil {
		return err
	}

	switch res.Outcome {
	case services.OutcomeSynced:
		photos := 0
		if res.Response != nil {
			photos = res.Response.PhotosUploaded
		}
		fmt.Fprintf(a.out, "Trip %s sent (%d photos uploaded)\n", res.Record.ID, photos)
	case services.OutcomeQueued:
		fmt.Fprintf(a.out, "Offline: trip %s saved and will be sent when the connection is back\n", res.Record.ID)
	case services.OutcomeFailed:
		fmt.Fprintf(a.out, "Send failed (%s): trip %s queued for retry\n", res.Error, res.Record.ID)
	}
	return nil
}

func (a *App) Queue(ctx context.Context) error {
	q := a.tripService.Queue(ctx)
	if len(q) == 0 {
		fmt.Fprintln(a.out, "Queue is empty")
		return nil
	}

	w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tBOOKING\tDATE\tPHOTOS\tSTATUS\tERROR")
	for _, r := range q {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\t%s\n",
			r.ID, r.Payload.BookingID, r.Payload.Date, len(r.Attachments), r.Status, r.Error)
	}
	return w.Flush()
}

// Sync drains the queue and prints one line per processed report.
func (a *App) Sync(ctx context.Context) error {
	res, err := a.syncService.SyncQueue(ctx, func(rec models.OfflineTripRecord, status models.SyncStatus, errMsg string) {
		if status == models.StatusSynced {
			fmt.Fprintf(a.out, "  %s synced\n", rec.ID)
			return
		}
		fmt.Fprintf(a.out, "  %s failed: %s\n", rec.ID, errMsg)
	})
	if errors.Is(err, common.ErrSyncInProgress) {
		fmt.Fprintln(a.out, "A sync is already running")
		return nil
	}
	if err != nil {
		return err
	}

	if res.Success == 0 && res.Failed == 0 {
		fmt.Fprintln(a.out, "Nothing to sync")
		return nil
	}
	fmt.Fprintf(a.out, "Synced %d, failed %d\n", res.Success, res.Failed)
	return nil
}

func (a *App) Remove(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	before := a.store.Len(ctx)
	q := a.tripService.Remove(ctx, args[0])
	if len(q) == before {
		fmt.Fprintf(a.out, "No queued trip with id %s\n", args[0])
		return nil
	}
	fmt.Fprintf(a.out, "Removed %s, %d left in queue\n", args[0], len(q))
	return nil
}

// Token stores the bearer token sent with sync requests. Without an
// argument the token is read from the terminal without echo. An empty
// token clears the stored one.
func (a *App) Token(ctx context.Context, args []string) error {
	var token string
	if len(args) > 0 {
		token = args[0]
	} else {
		t, err := GetSecret("Access token", a.out)
		if err != nil {
			return fmt.Errorf("read token: %w", err)
		}
		token = t
	}

	if err := a.authService.SetToken(ctx, token); err != nil {
		return err
	}
	if token == "" {
		fmt.Fprintln(a.out, "Token cleared")
	} else {
		fmt.Fprintln(a.out, "Token saved")
	}
	return nil
}

// Reset wipes every local key: the offline queue and the stored token.
// A non-empty queue is only dropped with --force.
func (a *App) Reset(ctx context.Context, args []string) error {
	force := len(args) == 1 && (args[0] == "--force" || args[0] == "-f")
	if len(args) > 0 && !force {
		return errUsage
	}

	if n := a.store.Len(ctx); n > 0 && !force {
		fmt.Fprintf(a.out, "%d queued reports would be lost; run 'reset --force'\n", n)
		return nil
	}

	if err := a.authService.Clear(ctx); err != nil {
		return err
	}
	if err := a.meta.Clear(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Local data cleared")
	return nil
}

func (a *App) Status(ctx context.Context) error {
	fmt.Fprintf(a.out, "Mode:     %s\n", a.Mode())
	fmt.Fprintf(a.out, "Server:   %s\n", a.config.ServerURL)
	fmt.Fprintf(a.out, "Queued:   %d\n", a.store.Len(ctx))

	keys, err := a.meta.List(ctx)
	if err != nil {
		return err
	}
	var size int
	for _, v := range keys {
		size += len(v)
	}
	fmt.Fprintf(a.out, "Stored:   %d keys, %d bytes\n", len(keys), size)

	updated, err := a.meta.UpdatedAt(ctx, metadata.KeyTripsQueue)
	switch {
	case errors.Is(err, common.ErrNotFound):
		fmt.Fprintln(a.out, "Saved:    never")
	case err != nil:
		return err
	default:
		fmt.Fprintf(a.out, "Saved:    %s\n", updated.Local().Format(time.DateTime))
	}

	if n := a.store.WriteFailures(); n > 0 {
		fmt.Fprintf(a.out, "Warning:  %d queue writes failed, see log\n", n)
	}
	return nil
}
