// Package worker contains methods for worker to init at start, and to process images
package worker

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/dustin/go-humanize"
	"github.com/pixelmark/pixelmark/internal/imageproc"
	"github.com/pixelmark/pixelmark/internal/model"
	"github.com/pixelmark/pixelmark/internal/service"
	"github.com/pixelmark/pixelmark/internal/watermark"
	kafkago "github.com/segmentio/kafka-go"
	wbfkafka "github.com/wb-go/wbf/kafka"
	"github.com/wb-go/wbf/retry"
)

// NoopPublisher - ЗАГЛУШКА, функциональность настоящего паблишера в очередь не нужна в рамках работы воркера
type NoopPublisher struct{}

func (NoopPublisher) SendWithRetry(ctx context.Context, strategy retry.Strategy, key []byte, v []byte) error {
	return nil
}

type ImageWorkerService interface { // дублируется из cmd/worker - может вынести такие структуры/контракты в отдельный пакет(не model)?
	UpdateStatus(ctx context.Context, id string, newStat model.Status) error
	SaveResult(ctx context.Context, res *model.Image) error
	Get(ctx context.Context, id string) (*model.Image, error)
}

type Worker struct {
	storage      service.ImageStorage
	service      ImageWorkerService
	queue        <-chan kafkago.Message
	consumer     *wbfkafka.Consumer
	resultPrefix string
	fontPath     string
}

func NewWorkerInstance(strg service.ImageStorage, svc ImageWorkerService, q <-chan kafkago.Message, cons *wbfkafka.Consumer, resPr, fontPath string) *Worker {
	return &Worker{storage: strg, service: svc, queue: q, consumer: cons, resultPrefix: resPr, fontPath: fontPath}
}

func (w *Worker) StartWorker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-w.queue:
			if !ok {
				log.Println("Queue channel closed, stopping worker...")
				return
			}
			id := string(msg.Key)
			if err := w.initProcessor(ctx, id); err != nil && !errors.Is(err, model.ErrImageNotFound) {
				log.Printf("Task %s failed: %v", id, err)
				continue
			}
			if err := w.consumer.Commit(ctx, msg); err != nil {
				log.Printf("Failed to commit queue-message: %v", err)
			}
		}
	}
}

func (w *Worker) initProcessor(ctx context.Context, id string) error {
	// считать из базы задачу
	task, err := w.service.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("Worker failed to fetch image info %q from DB: %w", id, err)
	}
	// проверить статус
	switch task.Status {
	case model.StatusDone:
		return nil
	case model.StatusInProgress:
		return fmt.Errorf("already in progress")
	}

	// на всякий случай проверить поле с результатом
	if strings.Contains(task.ResultKey, w.resultPrefix) {
		if err := w.service.UpdateStatus(ctx, id, model.StatusDone); err != nil {
			return fmt.Errorf("failed to update status of already-done task in DB: %w", err)
		}
		return nil
	}

	// обновить статус
	if err := w.service.UpdateStatus(ctx, id, model.StatusInProgress); err != nil {
		return fmt.Errorf("failed to update status of task %q to `in_progress` in DB: %w", id, err)
	}

	// выполняем саму операцию
	if pErr := w.processTask(ctx, task); pErr != nil {
		if uErr := w.service.UpdateStatus(ctx, id, model.StatusFailed); uErr != nil {
			return fmt.Errorf("failed to set status of task %q to `failed` in DB: %w \nAFTER\n error while processing task: %w", id, uErr, pErr)
		}
		return fmt.Errorf("failed to process task %q: %w", id, pErr)
	}

	return nil
}

func (w *Worker) processTask(ctx context.Context, task *model.Image) error {
	// достать из storage исходники
	base, _, err := w.storage.Get(ctx, task.SourceKey)
	if err != nil {
		return fmt.Errorf("worker failed to fetch base-image from storage: %w", err)
	}
	defer closeFileFlow(base)

	var wm io.ReadCloser
	if task.Operation == model.OpWatermark {
		wm, _, err = w.storage.Get(ctx, task.WatermarkKey)
		if err != nil {
			return fmt.Errorf("worker failed to fetch wm-image from storage: %w", err)
		}
		defer closeFileFlow(wm)
	}

	// определить формат выходного файла из содержимого исходника
	pBase, format, err := validateImgFormat(base, false)
	if err != nil {
		return fmt.Errorf("worker failed to validate base-image format: %w", err)
	}

	// свалидировать формат ватермарка
	var pWm io.Reader
	if task.Operation == model.OpWatermark {
		pWm, _, err = validateImgFormat(wm, true)
		if err != nil {
			return fmt.Errorf("worker failed to validate wm-image format: %w", err)
		}
	}

	// выполнить операцию
	var result io.Reader
	var size int64
	switch task.Operation {
	case model.OpResize:
		result, size, err = imageproc.Resizer(pBase, *task.X, *task.Y, format)
		if err != nil {
			return fmt.Errorf("worker failed to resize image: %w", err)
		}
	case model.OpThumbnail:
		result, size, err = imageproc.Thumbnailer(pBase, *task.X, *task.Y, format)
		if err != nil {
			return fmt.Errorf("worker failed to generate thumbnail from image: %w", err)
		}
	case model.OpWatermark:
		opts, pErr := watermarkOpts(task)
		if pErr != nil {
			return pErr
		}
		var pl watermark.Placement
		result, size, pl, err = imageproc.Watermarker(pBase, pWm, opts, format)
		if err != nil {
			return fmt.Errorf("worker failed to apply wm on image: %w", err)
		}
		placement := pl.String()
		task.Placement = &placement
		log.Printf("Task %s: watermark placed at %s (region mean %.1f, stddev %.1f)",
			task.UID, placement, pl.Stat.Mean, pl.Stat.StdDev)
	case model.OpTextMark:
		opts, pErr := textOpts(task, w.fontPath)
		if pErr != nil {
			return pErr
		}
		var applied bool
		result, size, applied, err = imageproc.TextMarker(pBase, opts, format)
		if err != nil {
			return fmt.Errorf("worker failed to apply text wm on image: %w", err)
		}
		if !applied {
			log.Printf("Task %s: font resource unavailable, watermarking skipped - result left unmodified", task.UID)
		}
	default:
		return model.ErrIncorrectOp
	}

	// положить результат в сторедж если ошибок нет на предыдущем этапе
	resCType := model.GetCType[format]
	resKey := w.resultPrefix + task.UID.String() + model.GetImageFileExt[resCType]
	if err := w.storage.Put(ctx, resKey, size, resCType, result); err != nil {
		return fmt.Errorf("worker failed to put result image to storage: %w", err)
	}

	task.Status = model.StatusDone
	task.ResultKey = resKey
	log.Printf("Task %s: result %s (%s) stored", task.UID, resKey, humanize.Bytes(uint64(size)))

	// обновить запись в БД
	if err := w.service.SaveResult(ctx, task); err != nil {
		return fmt.Errorf("worker failed to save result to DB: %w", err)
	}
	return nil
}

// watermarkOpts собирает параметры наложения из задачи; дефолты подставлены
// сервисом при создании, но на случай старых записей дублируем их здесь
func watermarkOpts(task *model.Image) (imageproc.WatermarkOpts, error) {
	opts := imageproc.WatermarkOpts{
		Scale:   model.DefaultScale,
		Opacity: model.DefaultOpacity,
		Padding: model.DefaultPadding,
	}

	if task.Position != nil {
		pos, err := watermark.ParsePosition(*task.Position)
		if err != nil {
			return opts, fmt.Errorf("%w: %q", model.ErrIncorrectPosition, *task.Position)
		}
		opts.Position = &pos
	}
	if task.Scale != nil {
		opts.Scale = *task.Scale
	}
	if task.Opacity != nil {
		opts.Opacity = *task.Opacity
	}
	if task.Padding != nil {
		opts.Padding = *task.Padding
	}
	if task.Invert != nil {
		opts.Invert = *task.Invert
	}

	return opts, nil
}

func textOpts(task *model.Image, fontPath string) (imageproc.TextOpts, error) {
	opts := imageproc.TextOpts{
		Scale:    model.DefaultScale,
		Opacity:  model.DefaultOpacity,
		Padding:  model.DefaultPadding,
		FontPath: fontPath,
	}

	if task.Text != nil {
		opts.Text = *task.Text
	}
	if task.Copyright != nil {
		opts.Copyright = *task.Copyright
	}
	if opts.Text == "" && !opts.Copyright {
		return opts, model.ErrEmptyText
	}
	if task.Scale != nil {
		opts.Scale = *task.Scale
	}
	if task.Opacity != nil {
		opts.Opacity = *task.Opacity
	}
	if task.Padding != nil {
		opts.Padding = *task.Padding
	}

	return opts, nil
}

func validateImgFormat(r io.ReadCloser, wm bool) (io.Reader, imaging.Format, error) {
	if r == nil {
		return nil, -1, errors.New("nil-reader provided")
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, -1, err
	}

	// webp декодируется на входе, но результат отдаем в png
	if imageproc.IsWebP(data) {
		if wm {
			return nil, -1, model.ErrUnsupportedWMFormat
		}
		return bytes.NewReader(data), imaging.PNG, nil
	}

	_, f, err := imageproc.SniffFormat(data)
	if err != nil {
		return nil, -1, err
	}

	format, err := imaging.FormatFromExtension(f)
	if err != nil {
		return nil, -1, err
	}

	if wm && format != imaging.PNG {
		return nil, -1, model.ErrUnsupportedWMFormat
	}

	switch format {
	case imaging.PNG, imaging.JPEG, imaging.GIF:
	default:
		return nil, -1, model.ErrUnsupportedFormat
	}

	return bytes.NewReader(data), format, nil
}

func closeFileFlow(res io.ReadCloser) {
	if res == nil {
		return
	}

	if err := res.Close(); err != nil {
		log.Println("Worker failed to close fileflow:", err)
	}
}
