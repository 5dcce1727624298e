package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"

	"github.com/campusdesk/campusdesk/internal/server"
	"github.com/campusdesk/campusdesk/modules/accounting"
	"github.com/campusdesk/campusdesk/modules/accounting/domain/aggregates/accountant"
	accountingapi "github.com/campusdesk/campusdesk/modules/accounting/infrastructure/api"
	accountantvm "github.com/campusdesk/campusdesk/modules/accounting/presentation/viewmodels"
	"github.com/campusdesk/campusdesk/modules/dcp"
	"github.com/campusdesk/campusdesk/modules/dcp/domain/aggregates/batch"
	dcpapi "github.com/campusdesk/campusdesk/modules/dcp/infrastructure/api"
	batchvm "github.com/campusdesk/campusdesk/modules/dcp/presentation/viewmodels"
	"github.com/campusdesk/campusdesk/modules/personnel"
	"github.com/campusdesk/campusdesk/modules/personnel/domain/aggregates/staff"
	personnelapi "github.com/campusdesk/campusdesk/modules/personnel/infrastructure/api"
	staffvm "github.com/campusdesk/campusdesk/modules/personnel/presentation/viewmodels"
	"github.com/campusdesk/campusdesk/pkg/apiclient"
	"github.com/campusdesk/campusdesk/pkg/configuration"
	"github.com/campusdesk/campusdesk/pkg/eventbus"
	"github.com/campusdesk/campusdesk/pkg/notify"
	"github.com/campusdesk/campusdesk/pkg/roster"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			log.Println(r)
			debug.PrintStack()
			os.Exit(1)
		}
	}()

	conf := configuration.Use()
	logger := conf.Logger()
	bus := eventbus.NewEventPublisher(logger)
	roster.SubscribeAudit(bus, logger, staff.Staff.ID)
	roster.SubscribeAudit(bus, logger, accountant.Accountant.ID)
	roster.SubscribeAudit(bus, logger, batch.Batch.ID)
	roster.SubscribeRemovedAudit(bus, logger)
	api := apiclient.New(conf.API.BaseURL, conf.API.Token, conf.API.Timeout, logger)
	resolver := roster.BaseURLResolver{Base: conf.API.BaseURL}

	deps := func(area string) roster.Deps {
		return roster.Deps{
			Confirmer: roster.AutoApprove{},
			Notifier:  notify.NewLogNotifier(logger, area),
			Resolver:  resolver,
			Bus:       bus,
			Logger:    logger,
		}
	}

	staffCtl := personnel.NewController(personnelapi.NewStaffSource(api), conf.PageSize, deps("personnel"))
	accountantCtl := accounting.NewController(accountingapi.NewAccountantSource(api), conf.PageSize, deps("accounting"))
	batchCtl := dcp.NewController(dcpapi.NewBatchSource(api), conf.PageSize, deps("dcp"))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	for area, refresh := range map[string]func(context.Context) error{
		"personnel":  staffCtl.Refresh,
		"accounting": accountantCtl.Refresh,
		"dcp":        batchCtl.Refresh,
	} {
		if err := refresh(ctx); err != nil {
			logger.WithError(err).WithField("area", area).Warn("initial roster load failed")
		}
	}

	srv := server.New(conf,
		&server.RosterRoutes[staff.Staff, staff.DTO]{
			Ctl: staffCtl, Base: "/personnel/staff", Sheet: "Staff",
			Render: func(s staff.Staff) any { return staffvm.StaffToViewModel(s) },
			Log:    logger,
		},
		&server.RosterRoutes[accountant.Accountant, accountant.DTO]{
			Ctl: accountantCtl, Base: "/accounting/accountants", Sheet: "Accountants",
			Render: func(a accountant.Accountant) any { return accountantvm.AccountantToViewModel(a) },
			Log:    logger,
		},
		&server.RosterRoutes[batch.Batch, batch.DTO]{
			Ctl: batchCtl, Base: "/dcp/batches", Sheet: "Equipment Packages",
			Render: func(b batch.Batch) any { return batchvm.BatchToViewModel(b) },
			Log:    logger,
		},
	)
	if err := srv.Start(ctx); err != nil {
		logger.WithError(err).Fatal("server stopped")
	}
}
