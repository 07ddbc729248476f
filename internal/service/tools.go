package service

import (
	"fmt"
	"strings"

	"github.com/pixelmark/pixelmark/internal/model"
	"github.com/pixelmark/pixelmark/internal/watermark"
)

func validateQueryParams(req *model.ListRequest) {
	// Обрабатываем пустые значения, присваиваем дефолты если надо
	if req.Page <= 0 {
		req.Page = 1
	}
	if req.Limit <= 0 || req.Limit > 100 {
		req.Limit = 30
	}
	if req.Sort == "" {
		req.Sort = model.ByCreated
	}
	if req.Order == "" {
		req.Order = model.OrderDESC
	}

	// Валидируем непустое поле типа сортировки
	req.Sort = strings.ToLower(req.Sort)
	req.Sort = strings.TrimSpace(req.Sort)
	switch {
	case strings.Contains(req.Sort, model.ByUUID):
		req.Sort = "uid"
	case strings.Contains(req.Sort, model.ByCreated):
		req.Sort = "created_at"
	default:
		req.Sort = "created_at" // по дефолту ставим сортировку по времени создания
	}

	// Валадируем непустой порядок
	req.Order = strings.ToLower(req.Order)
	req.Order = strings.TrimSpace(req.Order)
	switch {
	case strings.Contains(req.Order, model.OrderASC):
		req.Order = "ASC"
	case strings.Contains(req.Order, model.OrderDESC):
		req.Order = "DESC"
	default:
		req.Order = "DESC" // по дефолту ставим сортировку "новое-выше"
	}
}

func validateNormalizeImageInfo(raw *model.ImageCreateData, clean *model.Image) error {
	// корректно ли указана операция
	clean.Operation = model.Operation(raw.Operation)
	if !model.OperationsMap[clean.Operation] {
		return model.ErrIncorrectOp
	}

	// корректен ли исходник
	if raw.OrigImg == nil || raw.OrigImgSize <= 0 || !model.InImageTypeMap[raw.OrigContentType] {
		return model.ErrEmptySource
	}

	// корректен ли ватермарк
	if clean.Operation == model.OpWatermark && (raw.WMImg == nil || raw.WMImgSize <= 0 || raw.WMContentType != model.PNG) {
		return model.ErrEmptyWMark
	}

	clean.X = raw.X
	clean.Y = raw.Y

	return validateNormalizeOperation(raw, clean)
}

func validateNormalizeOperation(raw *model.ImageCreateData, clean *model.Image) error {
	switch clean.Operation { // проверка согласно самой операции
	case model.OpResize: // допустимо что одно значение нулевое/нуловое
		if (clean.X == nil || 0 >= *clean.X) &&
			(clean.Y == nil || 0 >= *clean.Y) {
			return model.ErrIncorrectAxis
		}
	case model.OpThumbnail: // результат должен быть x==y
		if err := validateNormalizeAxisThumbnail(clean); err != nil {
			return err
		}
	case model.OpWatermark, model.OpTextMark:
		if err := validateNormalizeWatermark(raw, clean); err != nil {
			return err
		}
	}
	return nil
}

func validateNormalizeAxisThumbnail(input *model.Image) error {
	if input.X == nil || input.Y == nil {
		return model.ErrIncorrectAxis
	}

	x, y := *input.X, *input.Y
	// кейс: обе оси - нули
	if x <= 0 && y <= 0 {
		return model.ErrIncorrectAxis
	}

	// кейс: одна из осей равна нулю
	if x <= 0 {
		input.X = input.Y
		input.ErrMsg = append(input.ErrMsg, fmt.Sprintf("X-axis incorrect value: using Y-axis value %d for X-axis for generating thumbnail", *input.X))
	}
	if y <= 0 {
		input.Y = input.X
		input.ErrMsg = append(input.ErrMsg, fmt.Sprintf("Y-axis incorrect value: using X-axis value %d for Y-axis for generating thumbnail", *input.Y))
	}

	// кейс: неодинаковые значения - берем меньшее
	if x != y {
		if x > y {
			input.X = input.Y
		} else {
			input.Y = input.X
		}
		input.ErrMsg = append(input.ErrMsg, fmt.Sprintf("Axis values must be equal for thumbnail: using smaller value %d", *input.X))
	}

	return nil
}

// validateNormalizeWatermark проверяет диапазоны и подставляет дефолты;
// позиция парсится здесь же, чтобы кривое значение отвалилось сразу с 400
func validateNormalizeWatermark(raw *model.ImageCreateData, clean *model.Image) error {
	if raw.Position != "" {
		if _, err := watermark.ParsePosition(raw.Position); err != nil {
			return model.ErrIncorrectPosition
		}
		pos := raw.Position
		clean.Position = &pos
	}

	scale := model.DefaultScale
	if raw.Scale != nil {
		scale = *raw.Scale
	}
	if scale <= 0 || scale > 1 {
		return model.ErrIncorrectWMParams
	}
	clean.Scale = &scale

	opacity := model.DefaultOpacity
	if raw.Opacity != nil {
		opacity = *raw.Opacity
	}
	if opacity < 0 || opacity > 1 {
		return model.ErrIncorrectWMParams
	}
	clean.Opacity = &opacity

	padding := model.DefaultPadding
	if raw.Padding != nil {
		padding = *raw.Padding
	}
	if padding < 0 || padding > 0.5 {
		return model.ErrIncorrectWMParams
	}
	clean.Padding = &padding

	invert := raw.Invert != nil && *raw.Invert
	clean.Invert = &invert

	if clean.Operation == model.OpTextMark {
		text := strings.TrimSpace(raw.Text)
		if text == "" && !raw.Copyright {
			return model.ErrEmptyText
		}
		clean.Text = &text
		copyright := raw.Copyright
		clean.Copyright = &copyright
	}

	return nil
}
