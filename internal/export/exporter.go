// Package export writes schema and submission archives to a local
// directory or an S3 bucket.
package export

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"gopkg.in/yaml.v3"

	schemasrepo "github.com/faciam-dev/gforms/internal/repository/schemas"
	submissionsrepo "github.com/faciam-dev/gforms/internal/repository/submissions"
	"github.com/faciam-dev/gforms/pkg/formschema"
)

type Dest interface {
	Write(ctx context.Context, name string, data []byte) error
}

type LocalDir struct{ Path string }

func (l LocalDir) Write(_ context.Context, name string, data []byte) error {
	if err := os.MkdirAll(l.Path, 0o755); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(l.Path, name), data, 0o644)
}

type S3 struct {
	Bucket string
	Prefix string
	client *s3.Client
}

func NewS3(ctx context.Context, bucket, prefix string) (S3, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return S3{}, err
	}
	return S3{Bucket: bucket, Prefix: prefix, client: s3.NewFromConfig(cfg)}, nil
}

func (s S3) Write(ctx context.Context, name string, data []byte) error {
	key := filepath.Join(s.Prefix, name)
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.Bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(data),
	})
	return err
}

// archive is the YAML document an export produces. Submissions are grouped
// under their owning schema so an archive restores cleanly.
type archive struct {
	ExportedAt time.Time      `yaml:"exportedAt"`
	Schemas    []schemaExport `yaml:"schemas"`
}

type schemaExport struct {
	Schema      formschema.Schema       `yaml:"schema"`
	Submissions []formschema.Submission `yaml:"submissions,omitempty"`
}

// Export writes one timestamped YAML archive of a tenant's schemas to dest.
// When subs is non-nil, each schema's submissions are included.
func Export(ctx context.Context, tenant string, schemas *schemasrepo.Repo, subs submissionsrepo.Store, dest Dest) error {
	ss, err := schemas.List(ctx, tenant)
	if err != nil {
		return err
	}
	doc := archive{ExportedAt: time.Now().UTC()}
	for _, s := range ss {
		ent := schemaExport{Schema: s}
		if subs != nil {
			if ent.Submissions, err = subs.ListBySchema(ctx, tenant, s.ID); err != nil {
				return err
			}
		}
		doc.Schemas = append(doc.Schemas, ent)
	}
	data, err := yaml.Marshal(doc)
	if err != nil {
		return err
	}
	fname := fmt.Sprintf("forms_%s.yaml", time.Now().Format("2006-01-02T15-04-05"))
	return dest.Write(ctx, fname, data)
}
