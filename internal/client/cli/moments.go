package cli

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/daybook/internal/models"
	"github.com/dmitrijs2005/daybook/internal/netx"
)

// List prints every loaded moment. A session with nothing loaded yet
// fetches the first page.
func (a *App) List(ctx context.Context) error {
	s, err := a.current()
	if err != nil {
		return a.report("List", err)
	}
	if len(s.Moments()) == 0 && s.HasNextPage() {
		if err := s.LoadMore(ctx); err != nil {
			return a.report("List", err)
		}
	}
	a.printMoments(s.Moments(), s.HasNextPage())
	return nil
}

// More loads the next page and prints the whole list.
func (a *App) More(ctx context.Context) error {
	s, err := a.current()
	if err != nil {
		return a.report("More", err)
	}
	if !s.HasNextPage() {
		fmt.Fprintln(a.out, "No more moments.")
		return nil
	}
	if err := s.LoadMore(ctx); err != nil {
		return a.report("More", err)
	}
	a.printMoments(s.Moments(), s.HasNextPage())
	return nil
}

func (a *App) printMoments(ms []models.Moment, more bool) {
	a.listed = ms
	if len(ms) == 0 {
		fmt.Fprintln(a.out, "No moments yet. Use 'add' to write one.")
		return
	}
	for i, m := range ms {
		fmt.Fprintf(a.out, "%3d. %s\n", i+1, formatMoment(m))
	}
	if more {
		fmt.Fprintln(a.out, "     ... type 'more' for older moments")
	}
}

// Add prompts for a new moment and saves it optimistically.
func (a *App) Add(ctx context.Context) error {
	s, err := a.current()
	if err != nil {
		return a.report("Add", err)
	}

	title, err := getSimpleText(a.reader, "Title", a.out)
	if err != nil {
		return err
	}
	date, err := GetDate(a.reader, "Date (YYYY-MM-DD)", a.out, a.clock.Today())
	if err != nil {
		return a.report("Add", err)
	}
	note, err := GetMultiline(a.reader, "Note", a.out)
	if err != nil {
		return err
	}
	photoPath, err := getSimpleText(a.reader, "Photo file (empty for none)", a.out)
	if err != nil {
		return err
	}

	in := models.MomentInput{Title: title, Date: date, Note: note}
	if photoPath != "" {
		ref, err := a.uploadPhoto(ctx, photoPath)
		if err != nil {
			return a.report("Photo upload", err)
		}
		in.Photo = ref
	}

	m, err := s.CreateMoment(ctx, in)
	if err != nil {
		return a.report("Add", err)
	}
	fmt.Fprintf(a.out, "Saved: %s\n", formatMoment(*m))
	return nil
}

func (a *App) uploadPhoto(ctx context.Context, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	head := make([]byte, 512)
	n, _ := f.Read(head)
	contentType := http.DetectContentType(head[:n])
	if !strings.HasPrefix(contentType, "image/") {
		return "", fmt.Errorf("%s is not an image (%s)", path, contentType)
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return "", err
	}

	ref, url, err := a.remote.PhotoUploadURL(ctx, a.userID, contentType)
	if err != nil {
		return "", err
	}
	if err := netx.Upload(ctx, url, contentType, f); err != nil {
		return "", err
	}
	return ref, nil
}

func (a *App) Delete(ctx context.Context, ref string) error {
	s, err := a.current()
	if err != nil {
		return a.report("Delete", err)
	}
	if err := s.DeleteMoment(ctx, a.resolve(ref)); err != nil {
		return a.report("Delete", err)
	}
	a.listed = nil
	fmt.Fprintln(a.out, "Deleted.")
	return nil
}

func (a *App) Feature(ctx context.Context, ref string, on bool) error {
	s, err := a.current()
	if err != nil {
		return a.report("Feature", err)
	}
	m, err := s.ToggleFeatured(ctx, a.resolve(ref), on)
	if err != nil {
		return a.report("Feature", err)
	}
	a.listed = nil
	fmt.Fprintf(a.out, "Updated: %s\n", formatMoment(*m))
	return nil
}

// Photo prints a short-lived link to the moment's photo.
func (a *App) Photo(ctx context.Context, ref string) error {
	m, ok := a.lookup(ref)
	if !ok {
		return a.report("Photo", fmt.Errorf("moment %s is not in the list", ref))
	}
	if m.Photo == "" {
		fmt.Fprintln(a.out, "This moment has no photo.")
		return nil
	}
	url, err := a.remote.PhotoURL(ctx, a.userID, m.Photo)
	if err != nil {
		return a.report("Photo", err)
	}
	fmt.Fprintln(a.out, url)
	return nil
}

func (a *App) Share(ctx context.Context, ref string, recipients []string) error {
	sh, err := a.remote.ShareMoment(ctx, a.userID, a.resolve(ref), recipients)
	if err != nil {
		return a.report("Share", err)
	}
	fmt.Fprintf(a.out, "Shared with %s until %s:\n%s\n",
		strings.Join(sh.Recipients, ", "), sh.ExpiresAt.Local().Format("2006-01-02 15:04"), sh.URL)
	return nil
}

// resolve turns a listing number into an id; anything else is taken as an
// id.
func (a *App) resolve(ref string) string {
	if m, ok := a.lookup(ref); ok {
		return m.ID
	}
	return ref
}

func (a *App) lookup(ref string) (models.Moment, bool) {
	if n, err := strconv.Atoi(ref); err == nil && n >= 1 && n <= len(a.listed) {
		return a.listed[n-1], true
	}
	if s, err := a.current(); err == nil {
		for _, m := range s.Moments() {
			if m.ID == ref {
				return m, true
			}
		}
	}
	return models.Moment{}, false
}
