// SPDX-License-Identifier: Apache-2.0
// Copyright 2025-2026 The Agent Operator Authors

package imagebuild

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/klauspost/compress/zstd"
	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/controller/controllerutil"

	agentv1alpha1 "github.com/kagenti/agent-operator/api/v1alpha1"
)

const (
	// LogConfigMapSuffix is appended to the resource name and kind for build log ConfigMaps.
	LogConfigMapSuffix = "-build-log"

	// LogDataKey is the ConfigMap key holding the log text.
	LogDataKey = "build.log"

	// MaxConfigMapLogBytes keeps the ConfigMap well below the object size limit.
	MaxConfigMapLogBytes = 512 * 1024

	// Label keys shared with the rest of the operator.
	LabelBuildLog  = agentv1alpha1.LabelBuildLog
	LabelOwnerKind = agentv1alpha1.LabelOwnerKind
	LabelOwnerName = agentv1alpha1.LabelOwnerName
	LabelManagedBy = agentv1alpha1.LabelManagedBy
	ManagedByValue = agentv1alpha1.ManagedByValue
)

// LogKey identifies the build log of a resource.
type LogKey struct {
	Namespace string
	Kind      string
	Name      string
	AttemptID string
}

// LogStore persists build logs and returns a reference recorded in status.
type LogStore interface {
	Put(ctx context.Context, key LogKey, data []byte) (string, error)
	Delete(ctx context.Context, key LogKey) error
}

// NopLogStore discards build logs.
type NopLogStore struct{}

func (NopLogStore) Put(context.Context, LogKey, []byte) (string, error) { return "", nil }

func (NopLogStore) Delete(context.Context, LogKey) error { return nil }

// ConfigMapLogStore keeps the latest build log of each resource in a ConfigMap.
type ConfigMapLogStore struct {
	client client.Client
}

// NewConfigMapLogStore creates a ConfigMap-backed log store.
func NewConfigMapLogStore(c client.Client) *ConfigMapLogStore {
	return &ConfigMapLogStore{client: c}
}

// LogConfigMapName returns the ConfigMap name used for a resource of kind.
func LogConfigMapName(kind, resource string) string {
	return resource + "-" + strings.ToLower(kind) + LogConfigMapSuffix
}

// Put writes the tail of data to the resource's log ConfigMap.
func (s *ConfigMapLogStore) Put(ctx context.Context, key LogKey, data []byte) (string, error) {
	if len(data) > MaxConfigMapLogBytes {
		data = data[len(data)-MaxConfigMapLogBytes:]
	}

	cm := &corev1.ConfigMap{
		ObjectMeta: metav1.ObjectMeta{
			Name:      LogConfigMapName(key.Kind, key.Name),
			Namespace: key.Namespace,
		},
	}
	_, err := controllerutil.CreateOrUpdate(ctx, s.client, cm, func() error {
		if cm.Labels == nil {
			cm.Labels = map[string]string{}
		}
		cm.Labels[LabelManagedBy] = ManagedByValue
		cm.Labels[LabelBuildLog] = "true"
		cm.Labels[LabelOwnerKind] = strings.ToLower(key.Kind)
		cm.Labels[LabelOwnerName] = agentv1alpha1.OwnerLabelValue(key.Name)
		if cm.Annotations == nil {
			cm.Annotations = map[string]string{}
		}
		cm.Annotations[agentv1alpha1.AnnotationOwnerName] = key.Name
		cm.Annotations[agentv1alpha1.AnnotationAttemptID] = key.AttemptID
		cm.Data = map[string]string{LogDataKey: string(data)}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("store build log: %w", err)
	}
	return fmt.Sprintf("configmap/%s/%s", key.Namespace, cm.Name), nil
}

// Delete removes the log ConfigMap. A missing ConfigMap is not an error.
func (s *ConfigMapLogStore) Delete(ctx context.Context, key LogKey) error {
	cm := &corev1.ConfigMap{
		ObjectMeta: metav1.ObjectMeta{
			Name:      LogConfigMapName(key.Kind, key.Name),
			Namespace: key.Namespace,
		},
	}
	if err := s.client.Delete(ctx, cm); err != nil && !apierrors.IsNotFound(err) {
		return fmt.Errorf("delete build log: %w", err)
	}
	return nil
}

// S3API is the subset of the S3 API used by S3LogStore.
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// S3LogStore writes zstd-compressed build logs to an S3 bucket.
type S3LogStore struct {
	client  S3API
	bucket  string
	prefix  string
	encoder *zstd.Encoder
}

// NewS3LogStore creates an S3-backed log store. Objects are written below prefix.
func NewS3LogStore(c S3API, bucket, prefix string) (*S3LogStore, error) {
	if bucket == "" {
		return nil, errors.New("S3 bucket is required")
	}
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("create zstd encoder: %w", err)
	}
	return &S3LogStore{client: c, bucket: bucket, prefix: strings.Trim(prefix, "/"), encoder: enc}, nil
}

func (s *S3LogStore) objectKey(key LogKey) string {
	return path.Join(s.prefix, key.Namespace, strings.ToLower(key.Kind), key.Name, "build.log.zst")
}

// Put uploads the compressed log. The object is overwritten by later attempts.
func (s *S3LogStore) Put(ctx context.Context, key LogKey, data []byte) (string, error) {
	objectKey := s.objectKey(key)
	compressed := s.encoder.EncodeAll(data, make([]byte, 0, len(data)/2))

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:          aws.String(s.bucket),
		Key:             aws.String(objectKey),
		Body:            bytes.NewReader(compressed),
		ContentType:     aws.String("text/plain"),
		ContentEncoding: aws.String("zstd"),
		Metadata:        map[string]string{"attempt-id": key.AttemptID},
	})
	if err != nil {
		return "", fmt.Errorf("upload build log s3://%s/%s: %w", s.bucket, objectKey, err)
	}
	return fmt.Sprintf("s3://%s/%s", s.bucket, objectKey), nil
}

// Delete removes the log object.
func (s *S3LogStore) Delete(ctx context.Context, key LogKey) error {
	objectKey := s.objectKey(key)
	if _, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(objectKey),
	}); err != nil {
		return fmt.Errorf("delete build log s3://%s/%s: %w", s.bucket, objectKey, err)
	}
	return nil
}

var (
	_ LogStore = NopLogStore{}
	_ LogStore = (*ConfigMapLogStore)(nil)
	_ LogStore = (*S3LogStore)(nil)
)
