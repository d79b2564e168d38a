package models

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestPointPool_Apply(t *testing.T) {
	testCases := []struct {
		Name          string
		Pool          PointPool
		Op            PoolOp
		Amount        int64
		ExpectedError error
		ExpectedPool  PointPool
	}{
		{
			Name:         "Success. Add #1",
			Pool:         PointPool{},
			Op:           PoolOpAdd,
			Amount:       1000,
			ExpectedPool: PointPool{TotalPoints: 1000, AvailablePoints: 1000},
		},
		{
			Name:         "Success. Use #2",
			Pool:         PointPool{TotalPoints: 1000, AvailablePoints: 1000},
			Op:           PoolOpUse,
			Amount:       300,
			ExpectedPool: PointPool{TotalPoints: 1000, UsedPoints: 300, AvailablePoints: 700},
		},
		{
			Name:          "Error. Use more than available #3",
			Pool:          PointPool{TotalPoints: 100, UsedPoints: 90, AvailablePoints: 10},
			Op:            PoolOpUse,
			Amount:        11,
			ExpectedError: ErrInsufficientPool,
			ExpectedPool:  PointPool{TotalPoints: 100, UsedPoints: 90, AvailablePoints: 10},
		},
		{
			Name:         "Success. Refund #4",
			Pool:         PointPool{TotalPoints: 1000, UsedPoints: 300, AvailablePoints: 700},
			Op:           PoolOpRefund,
			Amount:       100,
			ExpectedPool: PointPool{TotalPoints: 1000, UsedPoints: 200, AvailablePoints: 800},
		},
		{
			Name:          "Error. Refund more than used #5",
			Pool:          PointPool{TotalPoints: 1000, UsedPoints: 50, AvailablePoints: 950},
			Op:            PoolOpRefund,
			Amount:        51,
			ExpectedError: ErrOverRefund,
			ExpectedPool:  PointPool{TotalPoints: 1000, UsedPoints: 50, AvailablePoints: 950},
		},
		{
			Name:         "Success. Issue keeps available #6",
			Pool:         PointPool{TotalPoints: 1000, UsedPoints: 300, AvailablePoints: 700},
			Op:           PoolOpIssue,
			Amount:       50,
			ExpectedPool: PointPool{TotalPoints: 1050, UsedPoints: 350, AvailablePoints: 700},
		},
		{
			Name:         "Success. Issue on empty pool #7",
			Pool:         PointPool{},
			Op:           PoolOpIssue,
			Amount:       500,
			ExpectedPool: PointPool{TotalPoints: 500, UsedPoints: 500, AvailablePoints: 0},
		},
		{
			Name:          "Error. Zero amount #8",
			Pool:          PointPool{TotalPoints: 10, AvailablePoints: 10},
			Op:            PoolOpAdd,
			Amount:        0,
			ExpectedError: ErrAmountInvalid,
			ExpectedPool:  PointPool{TotalPoints: 10, AvailablePoints: 10},
		},
		{
			Name:          "Error. Negative amount #9",
			Pool:          PointPool{TotalPoints: 10, AvailablePoints: 10},
			Op:            PoolOpUse,
			Amount:        -5,
			ExpectedError: ErrAmountInvalid,
			ExpectedPool:  PointPool{TotalPoints: 10, AvailablePoints: 10},
		},
		{
			Name:         "Success. None #10",
			Pool:         PointPool{TotalPoints: 10, AvailablePoints: 10},
			Op:           PoolOpNone,
			Amount:       5,
			ExpectedPool: PointPool{TotalPoints: 10, AvailablePoints: 10},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.Name, func(t *testing.T) {
			pool := tc.Pool
			err := pool.Apply(tc.Op, tc.Amount)
			if !errors.Is(err, tc.ExpectedError) {
				t.Errorf("Expected error '%v', got: '%v'", tc.ExpectedError, err)
			}
			if diff := cmp.Diff(tc.ExpectedPool, pool); diff != "" {
				t.Errorf("pool mismatch:\n %s", diff)
			}
			if pool.AvailablePoints != max(0, pool.TotalPoints-pool.UsedPoints) {
				t.Errorf("available points %d do not match total %d - used %d", pool.AvailablePoints, pool.TotalPoints, pool.UsedPoints)
			}
		})
	}
}

func TestPointPool_Sequence(t *testing.T) {
	pool := NewPointPool()
	steps := []struct {
		Op     PoolOp
		Amount int64
	}{
		{PoolOpAdd, 1000},
		{PoolOpUse, 400},
		{PoolOpIssue, 250},
		{PoolOpRefund, 600},
		{PoolOpUse, 1000},
	}
	for _, step := range steps {
		if err := pool.Apply(step.Op, step.Amount); err != nil {
			t.Fatalf("step %v %d: %v", step.Op, step.Amount, err)
		}
		if pool.UsedPoints < 0 || pool.AvailablePoints < 0 {
			t.Fatalf("negative counters: %+v", pool)
		}
	}
	expected := PoolSnapshot{TotalPoints: 1250, UsedPoints: 1050, AvailablePoints: 200}
	if diff := cmp.Diff(expected, pool.Snapshot()); diff != "" {
		t.Errorf("snapshot mismatch:\n %s", diff)
	}
	if pool.NewUserPoints != DefaultNewUserPoints || pool.TouristQuestPoints != DefaultTouristQuestPoints {
		t.Errorf("unexpected default settings: %+v", pool)
	}
}
