package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/textproto"

	"github.com/gabriel-vasile/mimetype"

	"github.com/spec-kit/admin-console/internal/domain"
	apperrors "github.com/spec-kit/admin-console/pkg/util"
)

// Image is an upload attached to a product form.
type Image struct {
	Filename string
	Data     []byte
}

// Products binds /product.
type Products struct{ c *Client }

// List returns every product.
func (p *Products) List(ctx context.Context) ([]domain.Product, error) {
	var out []domain.Product
	if err := p.c.getJSON(ctx, "/product/all", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Get returns one product.
func (p *Products) Get(ctx context.Context, id int) (domain.Product, error) {
	var out domain.Product
	err := p.c.getJSON(ctx, fmt.Sprintf("/product/%d", id), &out)
	return out, err
}

// Create adds a product. The image is optional.
func (p *Products) Create(ctx context.Context, product domain.Product, image *Image) (domain.Product, error) {
	return p.submit(ctx, http.MethodPost, "/product", product, image)
}

// Update replaces a product. A nil image keeps the current one.
func (p *Products) Update(ctx context.Context, id int, product domain.Product, image *Image) (domain.Product, error) {
	product.ID = id
	return p.submit(ctx, http.MethodPut, fmt.Sprintf("/product/%d", id), product, image)
}

// Delete removes a product.
func (p *Products) Delete(ctx context.Context, id int) error {
	return p.c.delete(ctx, fmt.Sprintf("/product/%d", id))
}

func (p *Products) submit(ctx context.Context, method, path string, product domain.Product, image *Image) (domain.Product, error) {
	body, contentType, err := encodeProductForm(product, image)
	if err != nil {
		return domain.Product{}, apperrors.NewInternalError(err)
	}
	var out domain.Product
	err = p.c.do(ctx, request{method: method, path: path, body: body, contentType: contentType}, &out)
	return out, err
}

// encodeProductForm builds the multipart body the backend expects: a JSON
// "product" part and an optional "image" file part.
func encodeProductForm(product domain.Product, image *Image) (*bytes.Buffer, string, error) {
	product.Image = nil
	product.SizeStocks = product.NormalizedStocks()

	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)

	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", `form-data; name="product"`)
	header.Set("Content-Type", "application/json")
	part, err := w.CreatePart(header)
	if err != nil {
		return nil, "", err
	}
	if err := json.NewEncoder(part).Encode(product); err != nil {
		return nil, "", err
	}

	if image != nil && len(image.Data) > 0 {
		mtype := mimetype.Detect(image.Data)
		filename := image.Filename
		if filename == "" {
			filename = "image" + mtype.Extension()
		}
		header := textproto.MIMEHeader{}
		header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="image"; filename=%q`, filename))
		header.Set("Content-Type", mtype.String())
		part, err := w.CreatePart(header)
		if err != nil {
			return nil, "", err
		}
		if _, err := part.Write(image.Data); err != nil {
			return nil, "", err
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return buf, w.FormDataContentType(), nil
}
